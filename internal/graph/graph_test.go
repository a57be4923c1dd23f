package graph_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	name string
	deps []string
}

func (n node) Name() string           { return n.name }
func (n node) Dependencies() []string { return n.deps }

func lookupOf(nodes ...node) graph.LookupFunc[node] {
	byName := make(map[string]node, len(nodes))
	for _, n := range nodes {
		byName[strings.ToLower(n.name)] = n
	}

	return func(name string) (node, bool) {
		n, ok := byName[strings.ToLower(name)]
		return n, ok
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		nodes    []node
		target   string
		expected []string
	}{
		{
			name:     "single",
			nodes:    []node{{name: "a"}},
			target:   "a",
			expected: []string{"a"},
		},
		{
			name:     "chain",
			nodes:    []node{{name: "a", deps: []string{"b"}}, {name: "b", deps: []string{"c"}}, {name: "c"}},
			target:   "a",
			expected: []string{"c", "b", "a"},
		},
		{
			name: "diamond",
			nodes: []node{
				{name: "d", deps: []string{"b", "c"}},
				{name: "b", deps: []string{"a"}},
				{name: "c", deps: []string{"a"}},
				{name: "a"},
			},
			target:   "d",
			expected: []string{"a", "b", "c", "d"},
		},
		{
			name:     "declaration order",
			nodes:    []node{{name: "pack", deps: []string{"test", "build"}}, {name: "build"}, {name: "test"}},
			target:   "pack",
			expected: []string{"test", "build", "pack"},
		},
		{
			name:     "unrelated tasks are not included",
			nodes:    []node{{name: "a", deps: []string{"b"}}, {name: "b"}, {name: "c"}},
			target:   "b",
			expected: []string{"b"},
		},
		{
			name:     "case insensitive",
			nodes:    []node{{name: "Default", deps: []string{"BUILD"}}, {name: "Build"}},
			target:   "default",
			expected: []string{"Build", "Default"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order, err := graph.Resolve(tc.target, lookupOf(tc.nodes...))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, graph.Names(order))
		})
	}
}

func TestResolveCycle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		nodes    []node
		target   string
		expected graph.DependencyCycleError
	}{
		{
			name:     "two tasks",
			nodes:    []node{{name: "A", deps: []string{"B"}}, {name: "B", deps: []string{"A"}}},
			target:   "A",
			expected: graph.DependencyCycleError{"A", "B", "A"},
		},
		{
			name:     "self",
			nodes:    []node{{name: "A", deps: []string{"A"}}},
			target:   "A",
			expected: graph.DependencyCycleError{"A", "A"},
		},
		{
			name: "deep",
			nodes: []node{
				{name: "root", deps: []string{"a"}},
				{name: "a", deps: []string{"b"}},
				{name: "b", deps: []string{"c"}},
				{name: "c", deps: []string{"a"}},
			},
			target:   "root",
			expected: graph.DependencyCycleError{"a", "b", "c", "a"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			order, err := graph.Resolve(tc.target, lookupOf(tc.nodes...))
			require.Error(t, err)
			assert.Nil(t, order)
			assert.True(t, errors.IsConfigurationError(err))

			var cycleErr graph.DependencyCycleError
			require.ErrorAs(t, err, &cycleErr)
			assert.Equal(t, tc.expected, cycleErr)
		})
	}
}

func TestResolveMissing(t *testing.T) {
	t.Parallel()

	lookup := lookupOf(node{name: "a", deps: []string{"b"}}, node{name: "b", deps: []string{"missing"}})

	_, err := graph.Resolve("nope", lookup)

	var notFoundErr graph.TaskNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nope", notFoundErr.Name)
	assert.True(t, errors.IsConfigurationError(err))

	order, err := graph.Resolve("a", lookup)
	assert.Nil(t, order)

	var depErr graph.DependencyNotFoundError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, graph.DependencyNotFoundError{Task: "b", Dependency: "missing"}, depErr)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestWriteDot(t *testing.T) {
	t.Parallel()

	order, err := graph.Resolve("b", lookupOf(node{name: "b", deps: []string{"a"}}, node{name: "a"}))
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, graph.WriteDot(&buf, order))
	assert.Equal(t, "digraph {\n\t\"a\";\n\t\"b\" [style=bold];\n\t\"b\" -> \"a\";\n}\n", buf.String())
}

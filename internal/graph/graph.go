// Package graph resolves the execution order of a target task and its transitive dependencies.
package graph

import (
	"strings"

	"github.com/kilnworks/kiln/internal/errors"
	"github.com/kilnworks/kiln/internal/util"
)

// Node is a task as seen by the resolver.
type Node interface {
	Name() string
	Dependencies() []string
}

// LookupFunc returns the node registered under the given name.
type LookupFunc[T Node] func(name string) (T, bool)

// Resolve returns the target and its transitive dependencies ordered so that every task comes after
// all of its dependencies. A task reachable through several paths appears once, at the earliest point.
// Dependencies are visited in declaration order. On error no order is returned.
func Resolve[T Node](target string, lookup LookupFunc[T]) ([]T, error) {
	node, ok := lookup(target)
	if !ok {
		return nil, errors.New(TaskNotFoundError{Name: target})
	}

	resolver := &resolver[T]{lookup: lookup}

	if err := resolver.visit(node); err != nil {
		return nil, err
	}

	return resolver.order, nil
}

type resolver[T Node] struct {
	lookup LookupFunc[T]

	order []T
	// visited holds the keys of nodes already placed in order.
	visited []string
	// currentTraversal holds the names on the path being descended, to report cycles in order.
	currentTraversal []string
}

// visit is a depth-first search as described here:
// https://en.wikipedia.org/wiki/Topological_sorting#Depth-first_search
func (resolver *resolver[T]) visit(node T) error {
	key := strings.ToLower(node.Name())

	if util.ListContainsElement(resolver.visited, key) {
		return nil
	}

	for i, name := range resolver.currentTraversal {
		if strings.EqualFold(name, node.Name()) {
			cycle := append(append([]string{}, resolver.currentTraversal[i:]...), node.Name())
			return errors.New(DependencyCycleError(cycle))
		}
	}

	resolver.currentTraversal = append(resolver.currentTraversal, node.Name())

	for _, name := range node.Dependencies() {
		dependency, ok := resolver.lookup(name)
		if !ok {
			return errors.New(DependencyNotFoundError{Task: node.Name(), Dependency: name})
		}

		if err := resolver.visit(dependency); err != nil {
			return err
		}
	}

	resolver.currentTraversal = resolver.currentTraversal[:len(resolver.currentTraversal)-1]
	resolver.visited = append(resolver.visited, key)
	resolver.order = append(resolver.order, node)

	return nil
}

// Names returns the names of the given nodes.
func Names[T Node](nodes []T) []string {
	names := make([]string, 0, len(nodes))
	for _, node := range nodes {
		names = append(names, node.Name())
	}

	return names
}

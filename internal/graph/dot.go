package graph

import (
	"fmt"
	"io"

	"github.com/kilnworks/kiln/internal/errors"
)

// WriteDot emits a GraphViz compatible definition of the resolved graph. The target, the last node,
// is drawn bold.
func WriteDot[T Node](w io.Writer, nodes []T) (err error) {
	if _, err := io.WriteString(w, "digraph {\n"); err != nil {
		return errors.New(err)
	}

	defer func() {
		if _, closeErr := io.WriteString(w, "}\n"); closeErr != nil && err == nil {
			err = errors.New(closeErr)
		}
	}()

	for i, node := range nodes {
		style := ""
		if i == len(nodes)-1 {
			style = " [style=bold]"
		}

		if _, err := fmt.Fprintf(w, "\t%q%s;\n", node.Name(), style); err != nil {
			return errors.New(err)
		}

		for _, dependency := range node.Dependencies() {
			if _, err := fmt.Fprintf(w, "\t%q -> %q;\n", node.Name(), dependency); err != nil {
				return errors.New(err)
			}
		}
	}

	return nil
}

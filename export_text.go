package streamnet

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// WriteConnections writes the edge list in plain "source -> target" form,
// one connection per line, targets at outlets rendered by their sentinel id.
// The order follows the assembled (sorted) edge set.
func (net *NetworkGraph) WriteConnections(w io.Writer) error {
	for _, edge := range net.Edges {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", edge.SourceID, edge.TargetID); err != nil {
			return errors.Wrap(err, "Can't write connection")
		}
	}
	return nil
}

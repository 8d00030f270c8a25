package autodiff

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// PrintStack writes one line per tape entry: position, node index,
// operation, value and adjoint.
func (s *Stack) PrintStack(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "TAPE STACK\tid=%s\tdepth=%d\tnodes=%d\n", s.id, len(s.scopes), s.tape.Len())
	for i := range s.tape.Len() {
		id := s.tape.At(i)
		n := s.nodes.At(id)
		fmt.Fprintf(tw, "%d\t#%d\t%s\t%g\t: %g\n", i, id, n.kind, n.val, n.adj)
	}
	return tw.Flush()
}

package constraint

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/skerry-lang/skerry/classifier"
)

// DumpTable writes the constraint list as a table, one row per recorded
// fact in generation order. Handy next to the solver trace when a
// fixed point comes out wrong.
func DumpTable(w io.Writer, reg *classifier.Registry, cs []Constraint) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Seq", "Kind", "Form", "At"})
	tw.SetAutoWrapText(false)
	for _, c := range cs {
		at := ""
		if c.At.Known() {
			at = c.At.String()
		}
		tw.Append([]string{
			strconv.Itoa(c.Seq),
			c.Kind.String(),
			c.Render(reg),
			at,
		})
	}
	tw.Render()
}

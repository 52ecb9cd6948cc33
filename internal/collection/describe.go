package collection

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Describe writes a human-readable listing of the collection: each task in
// order with the tasks waiting for it, followed by the edges inferred from
// resource conflicts.
func (c *Collection) Describe(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tTASK\tDEPS\tDEPENDANTS\n")
	for i, it := range c.items {
		names := make([]string, len(it.Dependants))
		for j, d := range it.Dependants {
			names[j] = c.items[d].Name
		}
		dependants := strings.Join(names, ", ")
		if dependants == "" {
			dependants = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", i, it.Name, it.DependencyCount, dependants)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(c.synthesized) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nconflict edges:"); err != nil {
		return err
	}
	for _, e := range c.synthesized {
		if _, err := fmt.Fprintf(w, "  %s -> %s (%s)\n", e.From, e.To, e.Resource); err != nil {
			return err
		}
	}
	return nil
}

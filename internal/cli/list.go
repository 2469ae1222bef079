package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/soyforge/pkg/bundle"
	"github.com/arthur-debert/soyforge/pkg/globals"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var showGlobals bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Example: MsgListExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.compile()
			if err != nil {
				return err
			}
			b := d.Bundle()

			table, err := templateTable(b)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), table)

			if showGlobals {
				table, err := globalsTable(b.Globals())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "\n"+table)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showGlobals, "globals", false, MsgFlagGlobals)
	return cmd
}

func templateTable(b *bundle.Bundle) (string, error) {
	if b.Len() == 0 {
		return MsgNoTemplates + "\n", nil
	}
	rows := pterm.TableData{{"TEMPLATE", "REQUIRED", "OPTIONAL", "CALLS"}}
	for _, name := range b.Names() {
		t, _ := b.Template(name)
		rows = append(rows, []string{
			name,
			strings.Join(t.Required, ", "),
			strings.Join(t.Optional, ", "),
			fmt.Sprint(len(t.Calls)),
		})
	}
	return renderTable(rows)
}

func globalsTable(g *globals.Bindings) (string, error) {
	if g.Len() == 0 {
		return MsgNoGlobals + "\n", nil
	}
	rows := pterm.TableData{{"GLOBAL", "VALUE"}}
	for _, key := range g.Keys() {
		v, _ := g.Get(key)
		rows = append(rows, []string{key, fmt.Sprintf("%#v", v)})
	}
	return renderTable(rows)
}

func renderTable(rows pterm.TableData) (string, error) {
	table := pterm.DefaultTable.WithHasHeader().WithData(rows)
	if !isTerminal(os.Stdout) {
		table = table.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	s, err := table.Srender()
	if err != nil {
		return "", err
	}
	return s + "\n", nil
}

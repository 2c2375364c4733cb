package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/jwtly10/kid-relay/internal/relay"
)

func newRoutesCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the relayed operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				color.Disable()
			}
			_, err := io.WriteString(cmd.OutOrStdout(), renderRoutes(relay.Operations()))
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "no-color", false, "Disable coloured output")

	return cmd
}

// renderRoutes formats the operation table, one operation per line
func renderRoutes(ops []relay.Operation) string {
	var b strings.Builder

	b.WriteString(color.Bold.Sprint("RELAYED OPERATIONS\n"))
	for _, op := range ops {
		method := color.Green.Sprintf("%-5s", op.Method)
		if op.Method != "GET" {
			method = color.Yellow.Sprintf("%-5s", op.Method)
		}

		var fields []string
		if op.RawBody {
			fields = append(fields, "<json body>")
		}
		for _, f := range op.Fields {
			if f.Required {
				fields = append(fields, f.Name+"*")
			} else {
				fields = append(fields, f.Name)
			}
		}

		fmt.Fprintf(&b, "  %s %-38s %s\n", method, op.Path, color.Gray.Sprint(strings.Join(fields, " ")))
	}
	b.WriteString(color.Gray.Sprint("  * required\n"))

	return b.String()
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Veraticus/tidy-ledger/internal/cli"
	"github.com/Veraticus/tidy-ledger/internal/common"
	"github.com/Veraticus/tidy-ledger/internal/config"
	"github.com/Veraticus/tidy-ledger/internal/taxonomy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func taxonomyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "List the categories that can be assigned",
		Long:  `Fetch the remote taxonomy and print every group with the categories an operator can pick from it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(v)
			if err != nil {
				return common.NewUserError("invalid configuration", err)
			}

			out := cmd.OutOrStdout()
			client, err := newLedgerClient(settings, out)
			if err != nil {
				return err
			}

			idx, err := taxonomy.Load(cmd.Context(), client)
			if err != nil {
				return fmt.Errorf("failed to load taxonomy: %w", err)
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Taxonomy (%d categories)", idx.Len())))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, g := range idx.Groups() {
				fmt.Fprintln(w, cli.BoldStyle.Render(fmt.Sprintf("%s (group %d)", g.Group.Name, g.Group.ID)))
				if len(g.Categories) == 0 {
					fmt.Fprintf(w, "  %s\n", cli.SubtleStyle.Render("(no categories)"))
					continue
				}
				for _, c := range g.Categories {
					fmt.Fprintf(w, "  %d\t%s\n", c.ID, c.Name)
				}
			}
			return w.Flush()
		},
	}
}

package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.Models.Registry) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models configured")
			return nil
		}

		purple := lipgloss.Color("99")
		headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(purple)).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("NAME", "PROVIDER", "MODEL", "ROLE")

		for _, entry := range cfg.Models.Registry {
			role := ""
			switch entry.Name {
			case cfg.Models.Default:
				role = "default"
			case cfg.Models.Fallback:
				role = "fallback"
			}
			t.Row(entry.Name, entry.Provider, entry.Model, role)
		}

		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

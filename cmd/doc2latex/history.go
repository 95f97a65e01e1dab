// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/doc2latex/internal/ledger"
	"github.com/pdiddy/doc2latex/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions",
	Long: `History lists the most recent conversions recorded by batch runs, newest
first, with their outcome and output path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		path := viper.GetString("history_db")
		if path == "" {
			return fmt.Errorf("no history database configured")
		}

		l, err := ledger.Open(path)
		if err != nil {
			return err
		}
		defer l.Close()

		entries, err := l.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(dimStyle.Render("no conversions recorded"))
			return nil
		}
		fmt.Println(renderHistory(entries))
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func renderHistory(entries []ledger.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ConvertedAt.Local().Format(time.DateTime),
			string(e.Status),
			string(e.Format),
			e.InputPath,
			e.OutputPath,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("WHEN", "STATUS", "FORMAT", "INPUT", "OUTPUT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle.Padding(0, 1)
			}
			s := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 {
				switch types.ConversionStatus(rows[row][1]) {
				case types.ConversionDone:
					return s.Inherit(successStyle)
				case types.ConversionFailed:
					return s.Inherit(errorStyle)
				}
			}
			return s
		}).
		String()
}

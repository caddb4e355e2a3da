package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var importsLimit int

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recent workbook imports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListImportRuns(ctx, importsLimit)
		if err != nil {
			return eris.Wrap(err, "list imports")
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No imports found.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-20s  %9s  %6s  %11s  %7s  %s\n",
			"ID", "CREATED", "CHEMICALS", "BUDGET", "CONSUMABLES", "SKIPPED", "SOURCE")
		for _, r := range runs {
			fmt.Fprintf(out, "%-36s  %-20s  %9d  %6d  %11d  %7d  %s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"),
				r.Chemicals, r.Budget, r.Consumables, r.Skipped, r.Source)
		}
		return nil
	},
}

func init() {
	importsCmd.Flags().IntVar(&importsLimit, "limit", 20, "maximum number of imports to list")
	rootCmd.AddCommand(importsCmd)
}

package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup NAME",
	Short: "Match a chemical name against the reference knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMatcher()
		if err != nil {
			return err
		}

		name := strings.Join(args, " ")
		match, ok := m.Lookup(name)
		if !ok {
			zap.L().Info("no reference match", zap.String("name", name))
			return nil
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(match)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

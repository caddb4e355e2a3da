package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"organize", "import", "imports", "backfill", "lookup", "migrate", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "labinv", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestOrganizeCommand_Flags(t *testing.T) {
	flag := organizeCmd.Flags().Lookup("input")
	require.NotNil(t, flag, "organize command should have --input flag")

	flag = organizeCmd.Flags().Lookup("output")
	require.NotNil(t, flag, "organize command should have --output flag")
	assert.Equal(t, "organized_inventory.xlsx", flag.DefValue)
}

func TestImportCommand_Flags(t *testing.T) {
	flag := importCmd.Flags().Lookup("input")
	require.NotNil(t, flag, "import command should have --input flag")
}

func TestImportsCommand_Flags(t *testing.T) {
	flag := importsCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "imports command should have --limit flag")
	assert.Equal(t, "20", flag.DefValue)
}

func TestBackfillCommand_Flags(t *testing.T) {
	flag := backfillCmd.Flags().Lookup("dry-run")
	require.NotNil(t, flag, "backfill command should have --dry-run flag")
	assert.Equal(t, "false", flag.DefValue)

	flag = backfillCmd.Flags().Lookup("concurrency")
	require.NotNil(t, flag, "backfill command should have --concurrency flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestLookupCommand_RequiresName(t *testing.T) {
	assert.Error(t, lookupCmd.Args(lookupCmd, nil))
	assert.NoError(t, lookupCmd.Args(lookupCmd, []string{"sodium", "chloride"}))
}

package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersMaintenanceCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	require.True(t, names["migrate"])
	require.True(t, names["seed"])
	require.True(t, names["create-admin"])
}

func TestCreateAdminFlags(t *testing.T) {
	flags := createAdminCmd.Flags()

	name := flags.Lookup("name")
	require.NotNil(t, name)
	require.Equal(t, "Administrator", name.DefValue)

	for _, required := range []string{"email", "password"} {
		flag := flags.Lookup(required)
		require.NotNil(t, flag)
		require.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
	}
}

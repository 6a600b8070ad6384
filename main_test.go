package main

import (
	"testing"
)

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}

	if rootCmd.Use != "canonize" {
		t.Errorf("Unexpected Use: %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("rootCmd has no Short description")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := map[string]bool{
		"run":       false,
		"ingest":    false,
		"dedupe":    false,
		"normalize": false,
		"verify":    false,
		"export":    false,
		"db":        false,
		"version":   false,
	}

	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}

	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"db", "source-dir", "extracted-dir", "output-dir", "overrides", "threshold", "output", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

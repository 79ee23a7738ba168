package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestExportCmd tests the export command end to end.
func TestExportCmd(t *testing.T) {
	t.Parallel()

	t.Run("exports requested section", func(t *testing.T) {
		t.Parallel()

		dumpFile := writeTestDump(t)
		outDir := t.TempDir()

		cmd := NewExportCmd()
		cmd.SetArgs([]string{"--sections", "storage", "--format", "json", "-d", outDir, dumpFile})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute returned error: %v", err)
		}

		matches, err := filepath.Glob(filepath.Join(outDir, "dump_storage_*.json"))
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != 1 {
			t.Errorf("expected one exported file, got %v", matches)
		}
		info, err := os.Stat(matches[0])
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Error("exported file is empty")
		}
	})

	t.Run("requires sections flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewExportCmd()
		cmd.SetArgs([]string{writeTestDump(t)})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error when no sections are given")
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		cmd := NewExportCmd()
		cmd.SetArgs([]string{"--sections", "storage", "--format", "csv", writeTestDump(t)})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("rejects unknown section", func(t *testing.T) {
		t.Parallel()

		cmd := NewExportCmd()
		cmd.SetArgs([]string{"--sections", "cookies", "-d", t.TempDir(), writeTestDump(t)})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for unknown section")
		}
	})
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "relayd "+version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store_type: etcd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rootCmd.SetArgs([]string{"serve", "--config", path})
	defer func() {
		rootCmd.SetArgs(nil)
		configPath = ""
	}()

	if err := rootCmd.Execute(); err == nil {
		t.Error("serve started with an invalid config")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aellingwood/janos/internal/config"
)

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "janos" {
		t.Errorf("expected root command Use to be 'janos', got %q", rootCmd.Use)
	}

	expectedSubcommands := []string{"init", "build", "serve", "deploy", "version"}
	commands := rootCmd.Commands()

	nameSet := make(map[string]bool)
	for _, cmd := range commands {
		nameSet[cmd.Name()] = true
	}

	for _, expected := range expectedSubcommands {
		if !nameSet[expected] {
			t.Errorf("expected root command to have subcommand %q", expected)
		}
	}
}

func TestBuildFlags(t *testing.T) {
	expectedFlags := []string{"mode", "destination"}
	for _, name := range expectedFlags {
		if buildCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected build command to have flag %q", name)
		}
	}

	flag := buildCmd.Flags().ShorthandLookup("d")
	if flag == nil {
		t.Error("expected build command to have short flag -d for destination")
	} else if flag.Name != "destination" {
		t.Errorf("expected short flag -d to map to 'destination', got %q", flag.Name)
	}
}

func TestServeFlags(t *testing.T) {
	expectedFlags := []string{"port", "bind", "no-live-reload", "mode"}
	for _, name := range expectedFlags {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected serve command to have flag %q", name)
		}
	}

	portFlag := serveCmd.Flags().Lookup("port")
	if portFlag != nil && portFlag.DefValue != "8080" {
		t.Errorf("expected port default to be '8080', got %q", portFlag.DefValue)
	}

	bindFlag := serveCmd.Flags().Lookup("bind")
	if bindFlag != nil && bindFlag.DefValue != "localhost" {
		t.Errorf("expected bind default to be 'localhost', got %q", bindFlag.DefValue)
	}
}

func TestVersionOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(buf.String(), "janos") {
		t.Errorf("expected version output to mention janos, got %q", buf.String())
	}
}

func TestDeployCommandLookup(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]any
		want     string
	}{
		{"string", map[string]any{"deploy": "rsync -a _site/ host:/var/www"}, "rsync -a _site/ host:/var/www"},
		{"object", map[string]any{"deploy": map[string]any{"command": "make upload"}}, "make upload"},
		{"missing", map[string]any{}, ""},
		{"wrong type", map[string]any{"deploy": 42}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deployCommand(tt.metadata); got != tt.want {
				t.Errorf("deployCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStarterConfigStageOrder(t *testing.T) {
	cfg, err := config.Parse([]byte(starterConfig))
	if err != nil {
		t.Fatalf("starter config does not parse: %v", err)
	}

	index := make(map[string]int, len(cfg.Pipeline))
	for i, entry := range cfg.Pipeline {
		index[entry.Name] = i
	}

	// Frontmatter is parsed by the markdown stage, so the stages that
	// read metadata must run after it.
	for _, name := range []string{"publish", "collections"} {
		pos, ok := index[name]
		if !ok {
			t.Fatalf("starter pipeline missing %q", name)
		}
		if pos < index["markdown"] {
			t.Errorf("starter pipeline runs %q before markdown", name)
		}
	}
}

func TestInitThenBuild(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	rootCmd.SetArgs([]string{"init"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	for _, path := range []string{"janos.config.json", "_src/index.md", "_layouts/default.html"} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected init to create %s: %v", path, err)
		}
	}

	// Init refuses to overwrite an existing config.
	rootCmd.SetArgs([]string{"init"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("expected second init to fail")
	}

	rootCmd.SetArgs([]string{"build"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join("_site", "index.html"))
	if err != nil {
		t.Fatalf("expected build to write _site/index.html: %v", err)
	}
	if !strings.Contains(string(out), "Welcome to your new site") {
		t.Errorf("expected rendered page body, got %q", out)
	}
	if !strings.Contains(string(out), "<title>Hello, world | My Site</title>") {
		t.Errorf("expected layout to render title, got %q", out)
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with an intcode.toml
	dir := t.TempDir()
	tomlContent := `
[program]
path = "amp.txt"
noun = 12
verb = 2

[pipeline]
phases = [5, 9]
feedback = true
seed = 3

[store]
path = "results.db"

[log]
verbosity = 2
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Program.Path != "amp.txt" {
		t.Errorf("program path = %q, want amp.txt", m.Program.Path)
	}
	if m.Program.Noun == nil || *m.Program.Noun != 12 {
		t.Errorf("program noun = %v, want 12", m.Program.Noun)
	}
	if m.Program.Verb == nil || *m.Program.Verb != 2 {
		t.Errorf("program verb = %v, want 2", m.Program.Verb)
	}
	if lo, hi := m.PhaseRange(false); lo != 5 || hi != 9 {
		t.Errorf("phase range = %d..%d, want 5..9", lo, hi)
	}
	if !m.Pipeline.Feedback {
		t.Error("pipeline feedback = false, want true")
	}
	if m.Pipeline.Seed != 3 {
		t.Errorf("pipeline seed = %d, want 3", m.Pipeline.Seed)
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if m.ProgramPath() != filepath.Join(m.Dir, "amp.txt") {
		t.Errorf("ProgramPath() = %q", m.ProgramPath())
	}
	if m.StorePath() != filepath.Join(m.Dir, "results.db") {
		t.Errorf("StorePath() = %q", m.StorePath())
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[program]
path = "/abs/prog.txt"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if lo, hi := m.PhaseRange(false); lo != 0 || hi != 4 {
		t.Errorf("default phase range = %d..%d, want 0..4", lo, hi)
	}
	if lo, hi := m.PhaseRange(true); lo != 5 || hi != 9 {
		t.Errorf("default feedback phase range = %d..%d, want 5..9", lo, hi)
	}
	if m.Program.Noun != nil {
		t.Errorf("default noun = %v, want nil", *m.Program.Noun)
	}
	if m.ProgramPath() != "/abs/prog.txt" {
		t.Errorf("absolute program path rewritten to %q", m.ProgramPath())
	}
	if m.StorePath() != filepath.Join(m.Dir, ".intcode", "results.db") {
		t.Errorf("default store path = %q", m.StorePath())
	}
	if m.LogPath() != "" {
		t.Errorf("default log path = %q, want empty", m.LogPath())
	}
}

func TestFeedbackDefaultPhases(t *testing.T) {
	m, err := Parse("[pipeline]\nfeedback = true\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lo, hi := m.PhaseRange(m.Pipeline.Feedback); lo != 5 || hi != 9 {
		t.Errorf("feedback phase range = %d..%d, want 5..9", lo, hi)
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if m.Pipeline.Feedback {
		t.Error("default feedback = true")
	}
	if m.Dir != "" {
		t.Errorf("default dir = %q, want empty", m.Dir)
	}
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"bad toml":       "[pipeline\n",
		"wrong type":     "[pipeline]\nseed = \"zero\"\n",
		"phase arity":    "[pipeline]\nphases = [1, 2, 3]\n",
		"empty range":    "[pipeline]\nphases = [4, 0]\n",
		"noun only":      "[program]\nnoun = 1\n",
		"negative level": "[log]\nverbosity = -1\n",
	}
	for name, text := range cases {
		if _, err := Parse(text); err == nil {
			t.Errorf("%s: Parse succeeded, want error", name)
		}
	}
}

func TestLoadReportsPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[pipeline\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil || !strings.Contains(err.Error(), FileName) {
		t.Errorf("Load err = %v, want it to name %s", err, FileName)
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[program]
path = "found.txt"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Program.Path != "found.txt" {
		t.Errorf("program path = %q, want found.txt", m.Program.Path)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no intcode.toml exists")
	}
}

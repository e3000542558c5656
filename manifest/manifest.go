// Package manifest handles intcode.toml run configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a run directory.
const FileName = "intcode.toml"

// Manifest represents an intcode.toml run configuration.
type Manifest struct {
	Program  Program  `toml:"program"`
	Pipeline Pipeline `toml:"pipeline"`
	Store    Store    `toml:"store"`
	Log      Log      `toml:"log"`

	// Dir is the directory containing the intcode.toml file (set at load time).
	Dir string `toml:"-"`
}

// Program locates the program text and optional noun/verb patch.
type Program struct {
	Path string `toml:"path"`
	Noun *int   `toml:"noun"`
	Verb *int   `toml:"verb"`
}

// Pipeline configures amplifier network searches.
type Pipeline struct {
	Phases   []int `toml:"phases"` // inclusive [lo, hi]
	Feedback bool  `toml:"feedback"`
	Seed     int   `toml:"seed"`
}

// Store configures the results ledger.
type Store struct {
	Path string `toml:"path"`
}

// Log configures logging. Verbosity 0 logs notices and above, 1 adds info
// and 2 adds debug. An empty File logs to stderr.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Load parses an intcode.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest text and applies defaults. Dir is left empty.
func Parse(text string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(text, &m); err != nil {
		return nil, err
	}

	// Defaults
	if m.Store.Path == "" {
		m.Store.Path = filepath.Join(".intcode", "results.db")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Default returns the configuration used when no manifest is found.
func Default() *Manifest {
	m, err := Parse("")
	if err != nil {
		panic(err)
	}
	return m
}

// Validate checks field combinations the decoder cannot.
func (m *Manifest) Validate() error {
	switch len(m.Pipeline.Phases) {
	case 0:
	case 2:
		if m.Pipeline.Phases[0] > m.Pipeline.Phases[1] {
			return fmt.Errorf("pipeline.phases range %d..%d is empty", m.Pipeline.Phases[0], m.Pipeline.Phases[1])
		}
	default:
		return fmt.Errorf("pipeline.phases must be [lo, hi], got %v", m.Pipeline.Phases)
	}
	if (m.Program.Noun == nil) != (m.Program.Verb == nil) {
		return fmt.Errorf("program.noun and program.verb must be set together")
	}
	if m.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative")
	}
	return nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// resolve makes p absolute relative to the manifest directory.
func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// ProgramPath returns the program text path, or "" if none is configured.
func (m *Manifest) ProgramPath() string {
	return m.resolve(m.Program.Path)
}

// StorePath returns the results ledger path.
func (m *Manifest) StorePath() string {
	return m.resolve(m.Store.Path)
}

// LogPath returns the log file path, or "" for stderr.
func (m *Manifest) LogPath() string {
	return m.resolve(m.Log.File)
}

// PhaseRange returns the inclusive phase range for a chain or feedback
// network. An explicit pipeline.phases wins; otherwise chains use 0..4 and
// feedback rings 5..9.
func (m *Manifest) PhaseRange(feedback bool) (lo, hi int) {
	if len(m.Pipeline.Phases) == 2 {
		return m.Pipeline.Phases[0], m.Pipeline.Phases[1]
	}
	if feedback {
		return 5, 9
	}
	return 0, 4
}

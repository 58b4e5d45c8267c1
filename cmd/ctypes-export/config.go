package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const noManifestMessage = "no type database snapshots\nspecify them explicitly, e.g.:\n  ctypes-export export --db types.tdb NAME\nor list them in ctypes-export.toml"

type projectManifest struct {
	Path     string
	Root     string
	Database databaseConfig
	Export   exportConfig

	// Какие ключи [export] реально присутствуют в файле: нулевое значение
	// в TOML неотличимо от отсутствующего ключа.
	HasPrefix      bool
	HasSizeAsserts bool
	HasIncludeDeps bool
}

type manifestConfig struct {
	Database databaseConfig `toml:"database"`
	Export   exportConfig   `toml:"export"`
}

type databaseConfig struct {
	Snapshots []string `toml:"snapshots"`
}

type exportConfig struct {
	Prefix      string `toml:"prefix"`
	SizeAsserts bool   `toml:"size_asserts"`
	IncludeDeps bool   `toml:"include_deps"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "ctypes-export.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg manifestConfig
	meta, err := toml.DecodeFile(manifestPath, &cfg)
	if err != nil {
		return nil, true, fmt.Errorf("%s: failed to parse TOML: %w", manifestPath, err)
	}
	if meta.IsDefined("database") && !meta.IsDefined("database", "snapshots") {
		return nil, true, fmt.Errorf("%s: [database] without snapshots", manifestPath)
	}
	for _, snap := range cfg.Database.Snapshots {
		if strings.TrimSpace(snap) == "" {
			return nil, true, fmt.Errorf("%s: empty entry in [database].snapshots", manifestPath)
		}
	}
	return &projectManifest{
		Path:           manifestPath,
		Root:           filepath.Dir(manifestPath),
		Database:       cfg.Database,
		Export:         cfg.Export,
		HasPrefix:      meta.IsDefined("export", "prefix"),
		HasSizeAsserts: meta.IsDefined("export", "size_asserts"),
		HasIncludeDeps: meta.IsDefined("export", "include_deps"),
	}, true, nil
}

// SnapshotPaths resolves the manifest snapshot entries relative to the
// manifest's own directory.
func (m *projectManifest) SnapshotPaths() []string {
	out := make([]string, 0, len(m.Database.Snapshots))
	for _, snap := range m.Database.Snapshots {
		snap = strings.TrimSpace(snap)
		if filepath.IsAbs(snap) {
			out = append(out, snap)
			continue
		}
		out = append(out, filepath.Join(m.Root, filepath.FromSlash(snap)))
	}
	return out
}

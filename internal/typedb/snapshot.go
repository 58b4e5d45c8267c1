package typedb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/types"
)

// Current schema version - increment when the snapshot format changes
const snapshotSchemaVersion uint16 = 1

// Snapshot is the on-disk type database document. Type nodes are encoded
// recursively; trees stay finite because named children are stored as
// NamedRef cut points by the producer.
type Snapshot struct {
	Schema       uint16
	Producer     string
	PointerWidth uint8
	Providers    []SnapshotProvider
}

// SnapshotProvider is one origin inside a snapshot. Name "" is the binary
// view registry, anything else is a debug parser.
type SnapshotProvider struct {
	Name  string
	Types []NamedType
}

// NamedType binds one registered name to its descriptor tree.
type NamedType struct {
	Name string
	Type *types.Type
}

// Save writes a snapshot next to path and renames it into place, so readers
// never observe a half-written file.
func Save(path string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	snap.Schema = snapshotSchemaVersion
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err = os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Printf("failed to remove temp file: %v", err)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err = enc.Encode(snap); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// Load reads one snapshot file and rejects unknown schema versions.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path) // #nosec G304 -- path is a caller-supplied database file
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	var snap Snapshot
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%s: decode snapshot: %w", path, err)
	}
	if snap.Schema != snapshotSchemaVersion {
		return nil, &SchemaError{Path: path, Schema: snap.Schema}
	}
	return &snap, nil
}

// MergeSnapshots folds loaded snapshots into one multi-provider source.
// Providers with the same name across snapshots are merged; a name already
// present in a provider is kept (first snapshot wins) and reported.
func MergeSnapshots(snaps []*Snapshot, rep diag.Reporter) *Source {
	ptrWidth := uint8(0)
	merged := make(map[string]map[string]*types.Type)
	for _, snap := range snaps {
		if snap == nil {
			continue
		}
		if ptrWidth == 0 {
			ptrWidth = snap.PointerWidth
		}
		for _, sp := range snap.Providers {
			byName := merged[sp.Name]
			if byName == nil {
				byName = make(map[string]*types.Type, len(sp.Types))
				merged[sp.Name] = byName
			}
			for _, nt := range sp.Types {
				if _, dup := byName[nt.Name]; dup {
					diag.ReportWarning(rep, diag.DBDuplicateType, nt.Name,
						fmt.Sprintf("already registered by provider %q, keeping the first definition", sp.Name)).Emit()
					continue
				}
				byName[nt.Name] = nt.Type
			}
		}
	}
	providers := make([]Provider, 0, len(merged))
	for name, ts := range merged {
		providers = append(providers, Provider{Name: name, Types: ts})
	}
	return NewSource(ptrWidth, providers)
}

package typedb

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jordan9001/ctypes-export/internal/diag"
)

// LoadAll reads every snapshot file in parallel and merges them into a
// single source. Paths are sorted first so the merge order (and therefore
// which duplicate wins) does not depend on argument order.
func LoadAll(ctx context.Context, paths []string, jobs int, rep diag.Reporter) (*Source, error) {
	if len(paths) == 0 {
		return NewSource(0, nil), nil
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	snaps := make([]*Snapshot, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sorted)))

	for i, path := range sorted {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			snap, err := Load(path)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return MergeSnapshots(snaps, rep), nil
}

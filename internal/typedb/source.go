package typedb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jordan9001/ctypes-export/internal/diag"
	"github.com/jordan9001/ctypes-export/internal/types"
)

// Scope selects which providers a name query covers.
type Scope uint8

const (
	// ScopeAll covers the binary registry and every debug parser.
	ScopeAll Scope = iota
	// ScopeDebugOnly covers debug parsers only.
	ScopeDebugOnly
)

// Provider is one named origin of types. The empty name is the binary
// view's own registry; non-empty names are debug-info parsers.
type Provider struct {
	Name  string
	Types map[string]*types.Type
}

// Source is the read-only type database one export runs against. Providers
// are kept sorted by name so every lookup and enumeration is deterministic.
// Nodes handed out by a Source must not be mutated by the caller.
type Source struct {
	ptrWidth  uint8
	providers []Provider
}

// NewSource builds a source from providers. Provider order in the input
// does not matter.
func NewSource(ptrWidth uint8, providers []Provider) *Source {
	s := &Source{ptrWidth: ptrWidth}
	for _, p := range providers {
		if len(p.Types) == 0 {
			continue
		}
		s.providers = append(s.providers, p)
	}
	sort.SliceStable(s.providers, func(i, j int) bool {
		return s.providers[i].Name < s.providers[j].Name
	})
	return s
}

// PointerWidth returns the target pointer width in bytes.
func (s *Source) PointerWidth() uint8 {
	if s == nil || s.ptrWidth == 0 {
		return 8
	}
	return s.ptrWidth
}

// Lookup finds a type by name across all providers, binary registry first.
func (s *Source) Lookup(name string) (*types.Type, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.providers {
		if t, ok := s.providers[i].Types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// LookupDebug finds a type by name among debug parsers only. When several
// parsers provide the name the lexicographically first one wins and the
// ambiguity is reported as a warning.
func (s *Source) LookupDebug(name string, rep diag.Reporter) (*types.Type, bool) {
	if s == nil {
		return nil, false
	}
	var (
		found   *types.Type
		origins []string
	)
	for i := range s.providers {
		p := &s.providers[i]
		if p.Name == "" {
			continue
		}
		if t, ok := p.Types[name]; ok {
			if found == nil {
				found = t
			}
			origins = append(origins, p.Name)
		}
	}
	if len(origins) > 1 {
		diag.ReportWarning(rep, diag.DBAmbiguousProvider, name,
			fmt.Sprintf("provided by multiple debug parsers: %s; using %q",
				strings.Join(origins, ", "), origins[0])).Emit()
	}
	return found, found != nil
}

// Names enumerates every registered type name within scope, sorted and
// deduplicated.
func (s *Source) Names(scope Scope) []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for i := range s.providers {
		p := &s.providers[i]
		if scope == ScopeDebugOnly && p.Name == "" {
			continue
		}
		for name := range p.Types {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

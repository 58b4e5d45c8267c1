package depgraph

import "sort"

// DepSet holds the direct dependencies of one exported type, split by
// strength. A strong dependency is embedded by value, so its full layout
// must be known first; a weak dependency is reached only through a pointer
// or a function signature, so a forward declaration satisfies it. The same
// name may appear on both sides when it is reached along different paths.
type DepSet struct {
	Strong map[string]struct{}
	Weak   map[string]struct{}
}

func NewDepSet() DepSet {
	return DepSet{
		Strong: make(map[string]struct{}),
		Weak:   make(map[string]struct{}),
	}
}

func (s DepSet) add(name string, weak bool) {
	if name == "" {
		return
	}
	if weak {
		s.Weak[name] = struct{}{}
		return
	}
	s.Strong[name] = struct{}{}
}

// Has reports whether name appears in either set.
func (s DepSet) Has(name string) bool {
	if _, ok := s.Strong[name]; ok {
		return true
	}
	_, ok := s.Weak[name]
	return ok
}

// Len returns the number of distinct dependency names.
func (s DepSet) Len() int {
	n := len(s.Strong)
	for name := range s.Weak {
		if _, dup := s.Strong[name]; !dup {
			n++
		}
	}
	return n
}

// Names returns every dependency name once, sorted.
func (s DepSet) Names() []string {
	out := make([]string, 0, len(s.Strong)+len(s.Weak))
	for name := range s.Strong {
		out = append(out, name)
	}
	for name := range s.Weak {
		if _, dup := s.Strong[name]; !dup {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Restrict drops every dependency whose name is not in allowed and returns
// the receiver. Used when the export is limited to the requested set only.
func (s DepSet) Restrict(allowed map[string]struct{}) DepSet {
	for name := range s.Strong {
		if _, ok := allowed[name]; !ok {
			delete(s.Strong, name)
		}
	}
	for name := range s.Weak {
		if _, ok := allowed[name]; !ok {
			delete(s.Weak, name)
		}
	}
	return s
}

// Clone returns an independent copy of the set.
func (s DepSet) Clone() DepSet {
	out := NewDepSet()
	for name := range s.Strong {
		out.Strong[name] = struct{}{}
	}
	for name := range s.Weak {
		out.Weak[name] = struct{}{}
	}
	return out
}

package depgraph

import (
	"fmt"
	"sort"
	"strings"
)

// StrongCycleError reports that the resolver cannot make forward progress:
// every remaining name is blocked by strong dependencies, typically because
// two or more types embed each other by value with no pointer indirection.
type StrongCycleError struct {
	Remaining map[string]DepSet
}

func (e *StrongCycleError) Error() string {
	if e == nil || len(e.Remaining) == 0 {
		return "strong dependency cycle"
	}
	names := e.Names()
	return fmt.Sprintf("strong dependency cycle among %d types: %s",
		len(names), strings.Join(names, ", "))
}

// Names returns the blocked type names, sorted.
func (e *StrongCycleError) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.Remaining))
	for name := range e.Remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package fuzztests

import (
	"strings"
	"testing"

	"github.com/jordan9001/ctypes-export/internal/ctypes"
)

// FuzzIdentifier feeds arbitrary raw names and prefixes through the
// sanitizer and checks the output is always a usable generated identifier.
func FuzzIdentifier(f *testing.F) {
	addNameSeeds(f)
	f.Fuzz(func(t *testing.T, raw, prefix string) {
		if len(raw) > maxSeedBytes || len(prefix) > maxSeedBytes {
			t.Skip()
		}
		got := ctypes.Identifier(raw, prefix)
		if got == "" {
			t.Fatalf("Identifier(%q, %q) produced an empty name", raw, prefix)
		}
		if strings.HasPrefix(got, "__") {
			t.Fatalf("Identifier(%q, %q) = %q keeps a reserved dunder prefix", raw, prefix, got)
		}
		for i, r := range got {
			valid := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !valid {
				t.Fatalf("Identifier(%q, %q) = %q has invalid rune at %d", raw, prefix, got, i)
			}
		}
		if got[0] >= '0' && got[0] <= '9' {
			t.Fatalf("Identifier(%q, %q) = %q starts with a digit", raw, prefix, got)
		}
	})
}

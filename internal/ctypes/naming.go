package ctypes

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// pythonKeywords can never be bound as generated names.
var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {},
	"async": {}, "await": {}, "break": {}, "class": {}, "continue": {},
	"def": {}, "del": {}, "elif": {}, "else": {}, "except": {}, "finally": {},
	"for": {}, "from": {}, "global": {}, "if": {}, "import": {}, "in": {},
	"is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {}, "pass": {},
	"raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// Identifier sanitizes an arbitrary source name into a valid generated
// identifier and applies the caller's prefix. Characters outside the safe
// alphabet become underscores after compatibility decomposition drops
// combining marks. A leading double underscore is reserved in the target
// language (name mangling), so such results get an escape marker in front.
func Identifier(raw, prefix string) string {
	s := sanitize(raw)
	if s == "" {
		s = "t"
	}
	s = sanitize(prefix) + s
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	if strings.HasPrefix(s, "__") {
		s = "x" + s
	}
	if _, kw := pythonKeywords[s]; kw {
		s += "_"
	}
	return s
}

func sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range norm.NFKD.String(raw) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// AnonTypeName names an inline anonymous composite after its parent. Direct
// struct members use their byte offset, which is unique there; union
// members and anything reached through pointer, array or function
// indirection use a positional index instead.
func AnonTypeName(parent string, byOffset bool, key uint64) string {
	if byOffset {
		return fmt.Sprintf("%s_anon_0x%x", parent, key)
	}
	return fmt.Sprintf("%s_anon_%d", parent, key)
}

// AnonFieldName names an anonymous member inside a generated field list.
func AnonFieldName(byOffset bool, key uint64) string {
	if byOffset {
		return fmt.Sprintf("field_0x%x", key)
	}
	return fmt.Sprintf("field_%d", key)
}

// PadName names a synthetic struct padding field by its byte offset.
func PadName(offset uint64) string {
	return fmt.Sprintf("padd_0x%x", offset)
}

// UnionPadName is the single trailing pad of an under-filled union.
const UnionPadName = "padd_union"

// FieldName sanitizes a recorded member name. Field names never take the
// type prefix but share the keyword and dunder guards.
func FieldName(raw string) string {
	return Identifier(raw, "")
}

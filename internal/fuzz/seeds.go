package fuzztests

import "testing"

const (
	maxSeedBytes = 4 << 10 // 4 KiB — ограничение для тестового корпуса
)

// addGraphSeeds feeds the resolver fuzzer a few shapes it must survive:
// empty graph, a chain, a weak ring, a self-loop and a strong cycle.
func addGraphSeeds(f *testing.F) {
	f.Add([]byte{})
	// chain: 0 <- 1 <- 2 (strong)
	f.Add([]byte{1, 0, 0, 2, 1, 0})
	// weak ring: 0 -> 1 -> 2 -> 0
	f.Add([]byte{0, 1, 1, 1, 2, 1, 2, 0, 1})
	// weak self-loop
	f.Add([]byte{3, 3, 1})
	// strong two-cycle, must fail instead of spinning
	f.Add([]byte{0, 1, 0, 1, 0, 0})
}

func addNameSeeds(f *testing.F) {
	f.Add("point_t", "")
	f.Add("std::vector<int>", "bn_")
	f.Add("__reserved", "")
	f.Add("3d model #2", "x")
	f.Add("", "")
	f.Add("class", "")
	f.Add("олень", "p_")
}

// addLayoutSeeds covers the flattening shapes worth keeping in the corpus:
// no members, packed members, a byte member forcing an aligned pad run,
// a large gap and a trailing tail pad.
func addLayoutSeeds(f *testing.F) {
	f.Add([]byte{})
	// два вплотную уложенных dword
	f.Add([]byte{0, 3, 0, 3})
	// байт + добег до выравнивания
	f.Add([]byte{0, 0, 7, 7})
	// большой зазор между членами
	f.Add([]byte{0, 7, 15, 0})
	// одиночный член с хвостовым паддингом
	f.Add([]byte{0, 1, 31})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

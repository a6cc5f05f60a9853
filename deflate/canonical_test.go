package deflate

import "testing"

func TestCanonicalCodesPrefixFree(t *testing.T) {
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	codes := canonicalCodes(lengths)
	for i := range codes {
		for j := range codes {
			if i == j || codes[i].Length == 0 || codes[j].Length == 0 {
				continue
			}
			if isPrefixOf(codes[i], codes[j]) {
				t.Fatalf("code %d (%0*b) is a prefix of code %d (%0*b)",
					i, codes[i].Length, codes[i].Bits, j, codes[j].Length, codes[j].Bits)
			}
		}
	}
}

func isPrefixOf(a, b PrefixCode) bool {
	if a.Length >= b.Length {
		return false
	}
	return (b.Bits >> (b.Length - a.Length)) == a.Bits
}

func TestCanonicalCodesOrderWithinLength(t *testing.T) {
	// RFC 1951 example from §3.2.2: lengths 3,3,3,3,3,2,4,4 for symbols
	// A..H should yield codes 010,011,100,101,110,00,1110,1111.
	lengths := []uint8{3, 3, 3, 3, 3, 2, 4, 4}
	codes := canonicalCodes(lengths)
	want := []PrefixCode{
		{Bits: 0b010, Length: 3},
		{Bits: 0b011, Length: 3},
		{Bits: 0b100, Length: 3},
		{Bits: 0b101, Length: 3},
		{Bits: 0b110, Length: 3},
		{Bits: 0b00, Length: 2},
		{Bits: 0b1110, Length: 4},
		{Bits: 0b1111, Length: 4},
	}
	for i, w := range want {
		if codes[i] != w {
			t.Fatalf("codes[%d] = %+v, want %+v", i, codes[i], w)
		}
	}
}

func TestCanonicalCodesZeroLengthUnused(t *testing.T) {
	lengths := []uint8{0, 1, 0, 1}
	codes := canonicalCodes(lengths)
	if codes[0] != (PrefixCode{}) || codes[2] != (PrefixCode{}) {
		t.Fatalf("zero-length symbols got nonzero codes: %+v", codes)
	}
}

package deflate

// Constants fixed by RFC 1951.
const (
	numLLSymbols       = 288
	numDistanceSymbols = 30
	eobSymbol          = 256
	minBackrefLength   = 3
	maxLookback        = 1 << 15
	maxLookahead        = 258
	maxPrefixCodeLength = 15
	storedBlockCapacity = 65535
)

// PrefixCode is a canonical Huffman codeword: Bits holds the code
// right-justified, Length is its length in bits. Length == 0 means the
// symbol is unused and must never be emitted.
type PrefixCode struct {
	Bits   uint16
	Length uint8
}

// Offset is an RFC 1951 "extra bits" payload: a value of up to 13 bits
// (distance extra bits are the widest), always written LSB-first.
type Offset struct {
	Bits    uint16
	NumBits uint8
}

// PrefixCodeWithOffset pairs a symbol's prefix code with its extra-bits
// offset, e.g. a length symbol plus the bits distinguishing which length
// within that symbol's range was actually matched.
type PrefixCodeWithOffset struct {
	Code   PrefixCode
	Offset Offset
}

// symbolWithOffset is a pre-prefix-coding (symbol, extra-bits) pair.
type symbolWithOffset struct {
	Symbol uint16
	Offset Offset
}

// lengthRange and distanceRange describe a contiguous run of raw values
// sharing one symbol and one extra-bits width, per RFC 1951 §3.2.5.
type lengthRange struct {
	symbol    uint16
	numBits   uint8
	firstBase int
	lastBase  int // inclusive
}

// distanceRanges and lengthCodeRanges are reproduced bit-for-bit from RFC 1951's
// tables; interoperability depends on these being exact.
var distanceRanges = []lengthRange{
	{0, 0, 1, 1}, {1, 0, 2, 2}, {2, 0, 3, 3}, {3, 0, 4, 4},
	{4, 1, 5, 6}, {5, 1, 7, 8}, {6, 2, 9, 12}, {7, 2, 13, 16},
	{8, 3, 17, 24}, {9, 3, 25, 32}, {10, 4, 33, 48}, {11, 4, 49, 64},
	{12, 5, 65, 96}, {13, 5, 97, 128}, {14, 6, 129, 192}, {15, 6, 193, 256},
	{16, 7, 257, 384}, {17, 7, 385, 512}, {18, 8, 513, 768}, {19, 8, 769, 1024},
	{20, 9, 1025, 1536}, {21, 9, 1537, 2048}, {22, 10, 2049, 3072}, {23, 10, 3073, 4096},
	{24, 11, 4097, 6144}, {25, 11, 6145, 8192}, {26, 12, 8193, 12288}, {27, 12, 12289, 16384},
	{28, 13, 16385, 24576}, {29, 13, 24577, 32768},
}

var lengthCodeRanges = []lengthRange{
	{257, 0, 3, 3}, {258, 0, 4, 4}, {259, 0, 5, 5}, {260, 0, 6, 6},
	{261, 0, 7, 7}, {262, 0, 8, 8}, {263, 0, 9, 9}, {264, 0, 10, 10},
	{265, 1, 11, 12}, {266, 1, 13, 14}, {267, 1, 15, 16}, {268, 1, 17, 18},
	{269, 2, 19, 22}, {270, 2, 23, 26}, {271, 2, 27, 30}, {272, 2, 31, 34},
	{273, 3, 35, 42}, {274, 3, 43, 50}, {275, 3, 51, 58}, {276, 3, 59, 66},
	{277, 4, 67, 82}, {278, 4, 83, 98}, {279, 4, 99, 114}, {280, 4, 115, 130},
	{281, 5, 131, 162}, {282, 5, 163, 194}, {283, 5, 195, 226}, {284, 5, 227, 257},
	{285, 0, 258, 258},
}

// distanceLookup and lengthLookup are flattened per-value indexes into the
// ranges above, built once at package init for O(1) symbol lookup.
var distanceLookup [maxLookback + 1]symbolWithOffset
var lengthLookup [maxLookahead + 1]symbolWithOffset

func init() {
	for _, r := range distanceRanges {
		for v := r.firstBase; v <= r.lastBase; v++ {
			distanceLookup[v] = symbolWithOffset{
				Symbol: r.symbol,
				Offset: Offset{Bits: uint16(v - r.firstBase), NumBits: r.numBits},
			}
		}
	}
	for _, r := range lengthCodeRanges {
		for v := r.firstBase; v <= r.lastBase; v++ {
			lengthLookup[v] = symbolWithOffset{
				Symbol: r.symbol,
				Offset: Offset{Bits: uint16(v - r.firstBase), NumBits: r.numBits},
			}
		}
	}
}

// symbolWithOffsetFromDistance maps a back-reference distance (1..32768) to
// its RFC 1951 distance symbol and extra-bits offset.
func symbolWithOffsetFromDistance(distance int) symbolWithOffset {
	return distanceLookup[distance]
}

// symbolWithOffsetFromLength maps a back-reference length (3..258) to its
// RFC 1951 length symbol and extra-bits offset.
func symbolWithOffsetFromLength(length int) symbolWithOffset {
	return lengthLookup[length]
}

// lengthFromSymbolWithOffset recovers the numeric length a (symbol, offset)
// pair represents. symbol is relative to the length alphabet (257..285).
func lengthFromSymbolWithOffset(symbol uint16, offsetBits uint16) int {
	r := lengthCodeRanges[symbol-257]
	return r.firstBase + int(offsetBits)
}

// fixedLiteralLengthLengths is the RFC 1951 §3.2.6 fixed code-length table
// for the 288-symbol literal/length alphabet.
func fixedLiteralLengthLengths() []uint8 {
	lens := make([]uint8, numLLSymbols)
	for i := 0; i < 144; i++ {
		lens[i] = 8
	}
	for i := 144; i < 256; i++ {
		lens[i] = 9
	}
	for i := 256; i < 280; i++ {
		lens[i] = 7
	}
	for i := 280; i < numLLSymbols; i++ {
		lens[i] = 8
	}
	return lens
}

// fixedDistanceLengths is the RFC 1951 fixed 5-bit distance code: all 30
// symbols get length 5 (2 of the 32 codepoints are unused).
func fixedDistanceLengths() []uint8 {
	lens := make([]uint8, numDistanceSymbols)
	for i := range lens {
		lens[i] = 5
	}
	return lens
}

// codeLengthAlphabetOrder is the fixed RFC 1951 §3.2.7 permutation in which
// the 19 code-length code lengths are transmitted.
var codeLengthAlphabetOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

package deflate

var fixedLLCodes = canonicalCodes(fixedLiteralLengthLengths())
var fixedDistanceCodes = canonicalCodes(fixedDistanceLengths())

// FixedBlock is the DEFLATE type-1 block: the predefined literal/length and
// distance codes, fed by an LZSS matcher. Each step greedily compares the
// bit cost of the longest available back-reference against encoding the
// same bytes as literals, breaking ties toward the back-reference.
type FixedBlock struct {
	lzss *Lzss
	bw   *BufferedWriter
}

// NewFixedBlock wraps out, the gzip stream's unbuffered bit writer.
func NewFixedBlock(out *UnbufferedWriter) *FixedBlock {
	return &FixedBlock{lzss: NewLzss(), bw: NewBufferedWriter(out)}
}

// Put feeds one byte to the matcher, stepping the encoder once the
// look-ahead window is full.
func (f *FixedBlock) Put(b byte) error {
	f.lzss.Put(b)
	if !f.lzss.IsFull() {
		return nil
	}
	f.step()
	return nil
}

// Bits returns the buffered writer's current bit count.
func (f *FixedBlock) Bits(isLast bool) (uint64, error) {
	_ = isLast
	return f.bw.Bits(), nil
}

// Commit writes the 3-bit header directly (outside the measured body),
// drains any remaining matcher bytes, flushes the buffered body, then
// appends the end-of-block symbol.
func (f *FixedBlock) Commit(isLast bool) error {
	last := uint32(0)
	if isLast {
		last = 1
	}
	f.bw.Unbuffered().PushBit(last)
	f.bw.Unbuffered().PushBits(1, 2)

	for !f.lzss.IsEmpty() {
		f.step()
	}
	f.bw.Commit()
	f.bw.Unbuffered().PushPrefixCode(fixedLLCodes[eobSymbol])
	return nil
}

// Reset drains any remaining matcher bytes (so they are accounted for even
// though the buffer is about to be discarded), then discards the buffer
// and the matcher's window.
func (f *FixedBlock) Reset() {
	for !f.lzss.IsEmpty() {
		f.step()
	}
	f.bw.Reset()
	f.lzss.Reset()
}

func (f *FixedBlock) step() {
	br := f.lzss.BackReference()
	if br.Length >= minBackrefLength {
		litBits := 0
		for _, b := range f.lzss.LiteralsInBackReference(br.Length) {
			litBits += int(fixedLLCodes[b].Length)
		}
		if litBits >= f.backrefBits(br) {
			f.emitBackReference(br)
			f.lzss.TakeBackReference()
			return
		}
	}
	f.emitLiteral(f.lzss.Literal())
	f.lzss.TakeLiteral()
}

func (f *FixedBlock) backrefBits(br BackReference) int {
	lso := symbolWithOffsetFromLength(br.Length)
	dso := symbolWithOffsetFromDistance(br.Distance)
	return int(fixedLLCodes[lso.Symbol].Length) + int(lso.Offset.NumBits) +
		int(fixedDistanceCodes[dso.Symbol].Length) + int(dso.Offset.NumBits)
}

func (f *FixedBlock) emitLiteral(b byte) {
	f.bw.PushPrefixCode(fixedLLCodes[b])
}

func (f *FixedBlock) emitBackReference(br BackReference) {
	lso := symbolWithOffsetFromLength(br.Length)
	dso := symbolWithOffsetFromDistance(br.Distance)
	f.bw.PushBackReference(
		PrefixCodeWithOffset{Code: fixedLLCodes[lso.Symbol], Offset: lso.Offset},
		PrefixCodeWithOffset{Code: fixedDistanceCodes[dso.Symbol], Offset: dso.Offset},
	)
}

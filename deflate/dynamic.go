package deflate

// dynamicSymbol is one item of a dynamic block's deferred symbol sequence:
// a literal byte, the EOB symbol, or a length/distance symbol together with
// its extra-bits offset (Offset.NumBits == 0 when there is none).
type dynamicSymbol struct {
	Symbol uint16
	Offset Offset
}

// codeLengthItem is one item of the RFC 1951 §3.2.7 code-length symbol
// sequence: a plain code length (0..15) or one of the run-length symbols
// 16/17/18 together with its extra-bits offset.
type codeLengthItem struct {
	Symbol uint8
	Offset Offset
}

// DynamicBlock is the DEFLATE type-2 block: per-block optimal
// literal/length and distance codes, built from the block's own symbol
// frequencies via package-merge, with code-length-table run-length
// compression. Literal-vs-back-reference choice is deferred to flush time,
// once the block-optimal codes are known.
type DynamicBlock struct {
	lzss          *Lzss
	bw            *BufferedWriter
	countBySymbol [numLLSymbols + numDistanceSymbols]uint64
	block         []dynamicSymbol

	bufferedIsLastSet bool
	bufferedIsLast    bool
}

// NewDynamicBlock wraps out, the gzip stream's unbuffered bit writer.
func NewDynamicBlock(out *UnbufferedWriter) *DynamicBlock {
	return &DynamicBlock{lzss: NewLzss(), bw: NewBufferedWriter(out)}
}

// Put feeds one byte to the matcher, stepping the encoder once the
// look-ahead window is full.
func (d *DynamicBlock) Put(b byte) error {
	d.lzss.Put(b)
	if !d.lzss.IsFull() {
		return nil
	}
	d.step()
	return nil
}

// Bits buffers the block if not already buffered, then returns its bit
// length, including the one is_last bit which is written separately at
// commit time.
func (d *DynamicBlock) Bits(isLast bool) (uint64, error) {
	if err := d.buffer(isLast); err != nil {
		return 0, err
	}
	return d.bw.Bits() + 1, nil
}

// Commit buffers the block if not already buffered (asserting that doing
// so now would agree with any earlier Bits call), writes the is_last bit
// directly, then flushes the buffered body.
func (d *DynamicBlock) Commit(isLast bool) error {
	if d.bufferedIsLastSet && d.bufferedIsLast != isLast {
		return ErrInconsistentLastFlag
	}
	if err := d.buffer(isLast); err != nil {
		return err
	}
	last := uint32(0)
	if isLast {
		last = 1
	}
	d.bw.Unbuffered().PushBit(last)
	d.bw.Commit()
	return nil
}

// Reset discards all accumulated counts, the deferred symbol sequence, the
// output buffer, and the matcher's window.
func (d *DynamicBlock) Reset() {
	for i := range d.countBySymbol {
		d.countBySymbol[i] = 0
	}
	d.block = d.block[:0]
	d.bw.Reset()
	d.lzss.Reset()
	d.bufferedIsLastSet = false
}

func (d *DynamicBlock) step() {
	br := d.lzss.BackReference()
	if br.Length >= minBackrefLength {
		d.appendBackReference(br)
		return
	}
	d.appendLiteral(d.lzss.Literal())
}

func (d *DynamicBlock) appendLiteral(b byte) {
	d.countBySymbol[b]++
	d.block = append(d.block, dynamicSymbol{Symbol: uint16(b)})
	d.lzss.TakeLiteral()
}

func (d *DynamicBlock) appendBackReference(br BackReference) {
	lso := symbolWithOffsetFromLength(br.Length)
	dso := symbolWithOffsetFromDistance(br.Distance)
	d.countBySymbol[lso.Symbol]++
	d.countBySymbol[uint16(dso.Symbol)+numLLSymbols]++
	d.block = append(d.block, dynamicSymbol{Symbol: lso.Symbol, Offset: lso.Offset})
	d.block = append(d.block, dynamicSymbol{Symbol: uint16(dso.Symbol) + numLLSymbols, Offset: dso.Offset})
	for _, b := range d.lzss.LiteralsInBackReference(br.Length) {
		d.block = append(d.block, dynamicSymbol{Symbol: uint16(b)})
	}
	d.lzss.TakeBackReference()
}

// buffer performs the deferred flush: drain the matcher, append EOB, build
// the block-optimal codes from the accumulated frequencies, emit the
// header and code-length metadata, then walk the deferred symbol sequence
// choosing literal-vs-back-reference per group using the now-known codes.
// It is idempotent: a second call (e.g. Commit after an earlier Bits) is a
// no-op once the buffer holds anything.
func (d *DynamicBlock) buffer(isLast bool) error {
	if d.bw.Bits() > 0 {
		return nil
	}
	d.bufferedIsLast = isLast
	d.bufferedIsLastSet = true

	for !d.lzss.IsEmpty() {
		d.step()
	}
	d.countBySymbol[eobSymbol]++
	d.block = append(d.block, dynamicSymbol{Symbol: eobSymbol})

	llLengths, err := packageMerge(d.countBySymbol[:numLLSymbols], maxPrefixCodeLength)
	if err != nil {
		return err
	}
	distLengths, err := packageMerge(d.countBySymbol[numLLSymbols:], maxPrefixCodeLength)
	if err != nil {
		return err
	}
	llCodes := canonicalCodes(llLengths)
	distCodes := canonicalCodes(distLengths)

	d.bw.PushBits(2, 2)
	d.writeCodeLengthMetadata(llLengths, distLengths)

	i := 0
	for i < len(d.block) {
		item := d.block[i]
		if item.Symbol <= eobSymbol {
			d.bw.PushPrefixCode(llCodes[item.Symbol])
			i++
			continue
		}

		lengthItem := item
		distItem := d.block[i+1]
		length := lengthFromSymbolWithOffset(lengthItem.Symbol, lengthItem.Offset.Bits)
		distSymbol := distItem.Symbol - numLLSymbols

		litBits := 0
		allCoded := true
		for k := 0; k < length; k++ {
			code := llCodes[d.block[i+2+k].Symbol]
			if code.Length == 0 {
				allCoded = false
			}
			litBits += int(code.Length)
		}
		backrefBits := int(llCodes[lengthItem.Symbol].Length) + int(lengthItem.Offset.NumBits) +
			int(distCodes[distSymbol].Length) + int(distItem.Offset.NumBits)
		if !allCoded {
			litBits = backrefBits
		}

		if litBits >= backrefBits {
			d.bw.PushPrefixCode(llCodes[lengthItem.Symbol])
			d.bw.PushOffset(lengthItem.Offset)
			d.bw.PushPrefixCode(distCodes[distSymbol])
			d.bw.PushOffset(distItem.Offset)
		} else {
			for k := 0; k < length; k++ {
				d.bw.PushPrefixCode(llCodes[d.block[i+2+k].Symbol])
			}
		}
		i += 2 + length
	}

	return nil
}

// writeCodeLengthMetadata emits HLIT/HDIST/HCLEN, the code-length code's 19
// lengths in the fixed RFC permutation, and the run-length-encoded
// literal/length and distance code-length sequence.
func (d *DynamicBlock) writeCodeLengthMetadata(llLengths, distLengths []uint8) {
	numLeadingLL := leadingCodeCount(257, numLLSymbols, trailingZeroLengths(llLengths))
	numLeadingDist := leadingCodeCount(1, numDistanceSymbols, trailingZeroLengths(distLengths))

	var clSymbols []codeLengthItem
	var countByCL [19]uint64
	prevLength := uint8(maxPrefixCodeLength + 1)
	numPrev := 0

	flushBatch := func(min, max int, numBits uint8, batchSymbol uint8) {
		for numPrev >= min {
			size := numPrev
			if size > max {
				size = max
			}
			numPrev -= size
			countByCL[batchSymbol]++
			clSymbols = append(clSymbols, codeLengthItem{
				Symbol: batchSymbol,
				Offset: Offset{Bits: uint16(size - min), NumBits: numBits},
			})
		}
		for i := 0; i < numPrev; i++ {
			clSymbols = append(clSymbols, codeLengthItem{Symbol: prevLength})
		}
		countByCL[prevLength] += uint64(numPrev)
		numPrev = 0
	}

	flush := func() {
		if numPrev <= 0 {
			return
		}
		if prevLength == 0 && numPrev >= 11 {
			flushBatch(11, 138, 7, 18)
			return
		}
		if prevLength == 0 && numPrev >= 3 {
			flushBatch(3, 10, 3, 17)
			return
		}
		clSymbols = append(clSymbols, codeLengthItem{Symbol: prevLength})
		countByCL[prevLength]++
		numPrev--
		if numPrev > 0 {
			flushBatch(3, 6, 2, 16)
		}
	}

	addRange := func(lengths []uint8) {
		for _, l := range lengths {
			if l == prevLength {
				numPrev++
			} else {
				flush()
				prevLength = l
				numPrev = 1
			}
		}
	}

	addRange(llLengths[:numLeadingLL])
	addRange(distLengths[:numLeadingDist])
	flush()

	clLengths, err := packageMerge(countByCL[:], 7)
	if err != nil {
		// On this input domain (19 symbols, max length 7, 2^7 == 128 >=
		// 19) package-merge cannot be infeasible.
		panic(err)
	}
	clCodes := canonicalCodes(clLengths)

	reorderedLengths := make([]uint8, 19)
	for i, sym := range codeLengthAlphabetOrder {
		reorderedLengths[i] = clLengths[sym]
	}
	numLeadingCL := leadingCodeCount(4, 19, trailingZeroLengths(reorderedLengths))

	d.bw.PushBits(uint32(numLeadingLL-257), 5)
	d.bw.PushBits(uint32(numLeadingDist-1), 5)
	d.bw.PushBits(uint32(numLeadingCL-4), 4)
	for i := 0; i < numLeadingCL; i++ {
		d.bw.PushBits(uint32(reorderedLengths[i]), 3)
	}
	for _, item := range clSymbols {
		d.bw.PushPrefixCode(clCodes[item.Symbol])
		if item.Offset.NumBits > 0 {
			d.bw.PushOffset(item.Offset)
		}
	}
}

// trailingZeroLengths counts trailing zero-length entries in lengths.
func trailingZeroLengths(lengths []uint8) int {
	count := 0
	for _, l := range lengths {
		if l > 0 {
			count = 0
		} else {
			count++
		}
	}
	return count
}

// leadingCodeCount returns the number of leading (non-trimmed) entries in a
// code-length table of size max, after removing up to `trailing` trailing
// zero-length entries, never going below min.
func leadingCodeCount(min, max, trailing int) int {
	n := max - trailing
	if n < min {
		return min
	}
	return n
}

package deflate

import (
	"errors"
	"io"
)

// blockCandidate pairs a block encoder with the maximum number of
// uncompressed bytes the driver will ever feed it in one block. A
// candidate with maxBytes == 0 is effectively disabled.
type blockCandidate struct {
	enc      blockEncoder
	maxBytes uint64
}

// Driver feeds each incoming byte to every enabled block encoder, tracks
// an online change-point detector over the byte stream, and at each block
// boundary commits whichever candidate encoding is cheapest.
//
// The fixed-Huffman candidate's breakpoint is zero, disabling it: its
// advantage over the dynamic encoder is confined to tiny blocks, smaller
// than the CUSUM warmup region, so skipping its per-byte matching work
// costs only a few bits on those blocks dynamic would have dominated
// anyway.
type Driver struct {
	out        *UnbufferedWriter
	candidates []blockCandidate
	cusum      *CusumDetector
	blockBytes uint64
	maxOfMax   uint64
}

// NewDriver returns a driver that writes its gzip-internal bitstream to w.
func NewDriver(w io.ByteWriter) *Driver {
	out := NewUnbufferedWriter(w)
	candidates := []blockCandidate{
		{enc: NewStoredBlock(out), maxBytes: storedBlockCapacity},
		{enc: NewFixedBlock(out), maxBytes: 0},
		{enc: NewDynamicBlock(out), maxBytes: 1 << 30},
	}
	maxOfMax := uint64(0)
	for _, c := range candidates {
		if c.maxBytes > maxOfMax {
			maxOfMax = c.maxBytes
		}
	}
	return &Driver{
		out:        out,
		candidates: candidates,
		cusum:      NewCusumDetector(1<<13, 1e3),
		maxOfMax:   maxOfMax,
	}
}

// Put feeds b to every candidate whose breakpoint has not yet been
// exceeded and steps the change-point detector, reporting whether a
// change-point fired at this byte.
func (d *Driver) Put(b byte) (changePoint bool, err error) {
	for _, c := range d.candidates {
		if d.blockBytes < c.maxBytes {
			if err := c.enc.Put(b); err != nil {
				return false, err
			}
		}
	}
	d.blockBytes++
	return d.cusum.Step(b), nil
}

// AtMaxBlockSize reports whether the current block has reached the largest
// breakpoint of any candidate, the safety valve that bounds matcher state
// even if the change-point detector never fires.
func (d *Driver) AtMaxBlockSize() bool {
	return d.blockBytes >= d.maxOfMax
}

// CommitBoundary asks every still-eligible candidate for its bit cost,
// commits the cheapest, then resets every candidate and the change-point
// detector for the next block.
func (d *Driver) CommitBoundary(isLast bool) error {
	bestIdx := -1
	var bestBits uint64
	for i, c := range d.candidates {
		if c.maxBytes == 0 || d.blockBytes > c.maxBytes {
			continue
		}
		bits, err := c.enc.Bits(isLast)
		if err != nil {
			return err
		}
		if bestIdx == -1 || bits < bestBits {
			bestIdx, bestBits = i, bits
		}
	}
	if bestIdx == -1 {
		return errors.New("deflate: no eligible block encoder for current block")
	}
	if err := d.candidates[bestIdx].enc.Commit(isLast); err != nil {
		return err
	}
	for _, c := range d.candidates {
		c.enc.Reset()
	}
	d.cusum.Reset()
	d.blockBytes = 0
	return nil
}

// FlushByte pads the underlying gzip bitstream to a byte boundary, required
// after the final block and before the CRC32/ISIZE footer.
func (d *Driver) FlushByte() { d.out.FlushByte() }

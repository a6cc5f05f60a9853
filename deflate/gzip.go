package deflate

import (
	"bufio"
	"hash/crc32"
	"io"
)

// gzipHeader is the fixed 10-byte RFC 1952 header this encoder always
// writes: magic, CM=8 (deflate), FLG=0, MTIME=0, XFL=0, OS=3 (Unix).
var gzipHeader = [10]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03}

// Encoder wraps a Driver with the RFC 1952 gzip container: the fixed header,
// a running CRC32 of the uncompressed input, and the CRC32/ISIZE footer.
type Encoder struct {
	dst           *bufio.Writer
	driver        *Driver
	crc           uint32
	isize         uint32
	headerWritten bool
	closed        bool
}

// NewEncoder returns an Encoder that writes a complete gzip stream to dst as
// bytes are written to it.
func NewEncoder(dst io.Writer) *Encoder {
	bw := bufio.NewWriter(dst)
	return &Encoder{dst: bw, driver: NewDriver(bw)}
}

// Write feeds p through the block-selection driver, updating the running
// CRC32 and ISIZE, and commits a block boundary whenever the change-point
// detector fires or the largest candidate breakpoint is reached.
func (e *Encoder) Write(p []byte) (int, error) {
	if err := e.writeHeaderOnce(); err != nil {
		return 0, err
	}
	for i, b := range p {
		changePoint, err := e.driver.Put(b)
		if err != nil {
			return i, err
		}
		e.crc = crc32.Update(e.crc, crc32.IEEETable, p[i:i+1])
		e.isize++
		if changePoint || e.driver.AtMaxBlockSize() {
			if err := e.driver.CommitBoundary(false); err != nil {
				return i, err
			}
		}
	}
	return len(p), nil
}

// Close commits the final block, byte-aligns the stream, writes the
// CRC32/ISIZE footer, and flushes the underlying writer. It is not safe to
// call Write after Close.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.writeHeaderOnce(); err != nil {
		return err
	}
	if err := e.driver.CommitBoundary(true); err != nil {
		return err
	}
	e.driver.FlushByte()
	if err := writeUint32LE(e.dst, e.crc); err != nil {
		return err
	}
	if err := writeUint32LE(e.dst, e.isize); err != nil {
		return err
	}
	return e.dst.Flush()
}

func (e *Encoder) writeHeaderOnce() error {
	if e.headerWritten {
		return nil
	}
	e.headerWritten = true
	_, err := e.dst.Write(gzipHeader[:])
	return err
}

func writeUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	_, err := w.Write(buf[:])
	return err
}

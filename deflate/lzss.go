package deflate

// BackReference is a candidate LZSS match: Length == 0 means no match:
// Length > 0 implies Length >= minBackrefLength and 1 <= Distance <=
// maxLookback.
type BackReference struct {
	Distance int
	Length   int
}

// noKeySentinel marks a look-back slot that was created without enough
// trailing context to form a 3-byte pattern key (the look-ahead held fewer
// than 2 bytes after the take, as happens while draining the end of input).
const noKeySentinel = ^uint32(0)

// Lzss is a sliding-window, chained-hash longest-match matcher. The caller
// drives it with Put, then, once IsFull reports true, consumes exactly one
// unit (a literal or a whole back-reference) via TakeLiteral/TakeBackReference
// before resuming Put calls.
type Lzss struct {
	lookBack  *RingBuffer[byte]
	lookAhead *RingBuffer[byte]
	chain     *RingBuffer[uint64]
	keys      *RingBuffer[uint32]
	head      map[uint32]uint64

	// absolutePosition is the absolute position of the newest byte so far
	// moved into lookBack. It starts at 0 (no bytes yet); the first byte
	// taken is assigned position 1, and 0 remains reserved as the
	// end-of-chain sentinel.
	absolutePosition uint64

	cachedBackRef BackReference
	backRefValid  bool
}

// NewLzss returns a matcher with the RFC 1951 window sizes.
func NewLzss() *Lzss {
	return &Lzss{
		lookBack:  NewRingBuffer[byte](maxLookback),
		lookAhead: NewRingBuffer[byte](maxLookahead),
		chain:     NewRingBuffer[uint64](maxLookback),
		keys:      NewRingBuffer[uint32](maxLookback),
		head:      make(map[uint32]uint64),
	}
}

func patternKey(a, b, c byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16
}

// IsFull reports whether the look-ahead window has as much context as it
// can hold; the caller should stop calling Put and consume one unit.
func (l *Lzss) IsFull() bool { return l.lookAhead.IsFull() }

// IsEmpty reports whether there is no more buffered input to consume.
func (l *Lzss) IsEmpty() bool { return l.lookAhead.IsEmpty() }

// Put pushes one byte into the look-ahead window and invalidates the
// cached back-reference.
func (l *Lzss) Put(b byte) {
	l.lookAhead.Enqueue(b)
	l.backRefValid = false
}

// Literal returns the byte currently at the front of the look-ahead window.
func (l *Lzss) Literal() byte {
	b, _ := l.lookAhead.At(0)
	return b
}

// BackReference returns the longest match available at the current
// position, computing and caching it on first access.
func (l *Lzss) BackReference() BackReference {
	if !l.backRefValid {
		l.cachedBackRef = l.findBestBackReference()
		l.backRefValid = true
	}
	return l.cachedBackRef
}

// LiteralsInBackReference returns the n bytes a back-reference of that
// length would cover, letting a caller retain the option of emitting them
// as plain literals instead.
func (l *Lzss) LiteralsInBackReference(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i], _ = l.lookAhead.At(i)
	}
	return out
}

// TakeLiteral consumes one byte from the look-ahead window, maintaining the
// look-back window, the chain, and the pattern head map.
func (l *Lzss) TakeLiteral() {
	l.backRefValid = false

	if l.lookBack.IsFull() {
		evictedAbs := l.absoluteStartOfLookBack()
		evictedKey, _ := l.keys.Dequeue()
		l.chain.Dequeue()
		l.lookBack.Dequeue()
		if evictedKey != noKeySentinel {
			if cur, ok := l.head[evictedKey]; ok && cur == evictedAbs {
				delete(l.head, evictedKey)
			}
		}
	}

	b, err := l.lookAhead.Dequeue()
	if err != nil {
		return
	}
	l.lookBack.Enqueue(b)
	l.absolutePosition++

	if l.lookAhead.Len() >= 2 {
		b1, _ := l.lookAhead.At(0)
		b2, _ := l.lookAhead.At(1)
		key := patternKey(b, b1, b2)
		prev := l.head[key]
		l.chain.Enqueue(prev)
		l.keys.Enqueue(key)
		l.head[key] = l.absolutePosition
	} else {
		l.chain.Enqueue(0)
		l.keys.Enqueue(noKeySentinel)
	}
}

// TakeBackReference consumes the cached back-reference's full length via
// repeated literal takes.
func (l *Lzss) TakeBackReference() {
	br := l.BackReference()
	for i := 0; i < br.Length; i++ {
		l.TakeLiteral()
	}
}

// Reset discards all window, chain, and hash-map state.
func (l *Lzss) Reset() {
	l.lookBack.Reset()
	l.lookAhead.Reset()
	l.chain.Reset()
	l.keys.Reset()
	l.head = make(map[uint32]uint64)
	l.absolutePosition = 0
	l.backRefValid = false
	l.cachedBackRef = BackReference{}
}

func (l *Lzss) absoluteStartOfLookBack() uint64 {
	return l.absolutePosition - uint64(l.lookBack.Len()) + 1
}

func (l *Lzss) isAbsoluteInLookback(abs uint64) bool {
	if abs == 0 || l.lookBack.Len() == 0 {
		return false
	}
	return abs >= l.absoluteStartOfLookBack() && abs <= l.absolutePosition
}

func (l *Lzss) absoluteToRelative(abs uint64) int {
	return int(abs - l.absoluteStartOfLookBack())
}

// findBestBackReference walks the hash chain for the 3-byte pattern at the
// front of the look-ahead window, extending each candidate as far as it
// matches (cyclically, once the match runs past the currently filled
// look-back, so runs like "aaaa..." collapse into one long match) and
// keeping the longest. Ties favor the first (most recent, smallest
// distance) candidate encountered, since the chain walk visits occurrences
// newest-first.
func (l *Lzss) findBestBackReference() BackReference {
	if l.lookAhead.Len() < 3 {
		return BackReference{}
	}
	b0, _ := l.lookAhead.At(0)
	b1, _ := l.lookAhead.At(1)
	b2, _ := l.lookAhead.At(2)
	key := patternKey(b0, b1, b2)
	head, ok := l.head[key]
	if !ok || head == 0 {
		return BackReference{}
	}

	nextPos := l.absolutePosition + 1
	var bestLength, bestDistance int
	current := head
	for visited := 0; current != 0 && l.isAbsoluteInLookback(current) && visited <= l.lookBack.Cap(); visited++ {
		rel := l.absoluteToRelative(current)
		length := l.matchLengthAt(rel)
		if length > bestLength {
			bestLength = length
			bestDistance = int(nextPos - current)
		}
		next, err := l.chain.At(rel)
		if err != nil {
			break
		}
		current = next
	}

	if bestLength < minBackrefLength {
		return BackReference{}
	}
	if bestLength > maxLookahead {
		bestLength = maxLookahead
	}
	return BackReference{Distance: bestDistance, Length: bestLength}
}

// matchLengthAt returns how many bytes, starting at look-back relative
// index rel, match the look-ahead window starting at index 0. Once the
// comparison runs past the currently filled look-back, it wraps cyclically
// over the suffix [rel, lookBackLen), letting a single repeated pattern
// extend indefinitely.
func (l *Lzss) matchLengthAt(rel int) int {
	lookBackLen := l.lookBack.Len()
	limit := l.lookAhead.Len()
	if limit > maxLookahead {
		limit = maxLookahead
	}
	length := 0
	for i := 0; i < limit; i++ {
		idx := rel + i
		if idx >= lookBackLen {
			period := lookBackLen - rel
			if period <= 0 {
				break
			}
			idx = rel + (i % period)
		}
		lb, err := l.lookBack.At(idx)
		if err != nil {
			break
		}
		ah, _ := l.lookAhead.At(i)
		if lb != ah {
			break
		}
		length++
	}
	return length
}

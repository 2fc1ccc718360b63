package pytree

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Levels groups squares by recursion depth. Depth 0 is the root.
//
// Buckets are kept in a slice indexed by depth, so iteration is always in
// ascending depth order, and squares inside a bucket keep the order they were
// appended in.
type Levels struct {
	buckets [][]Square
}

// NewLevels creates an empty set.
func NewLevels() *Levels {
	return &Levels{}
}

// Append adds squares to the bucket for depth, creating it (and any missing
// shallower buckets) if needed. depth must not be negative; Append panics
// otherwise.
func (l *Levels) Append(depth int, squares ...Square) {
	if depth < 0 {
		panic("pytree: negative depth")
	}
	for len(l.buckets) <= depth {
		l.buckets = append(l.buckets, nil)
	}
	l.buckets[depth] = append(l.buckets[depth], squares...)
}

// At returns the squares at depth, or nil if the depth is not populated.
func (l *Levels) At(depth int) []Square {
	if depth < 0 || depth >= len(l.buckets) {
		return nil
	}
	return l.buckets[depth]
}

// Depths returns the number of depth buckets.
func (l *Levels) Depths() int {
	return len(l.buckets)
}

// Len returns the total number of squares over all depths.
func (l *Levels) Len() int {
	n := 0
	for _, b := range l.buckets {
		n += len(b)
	}
	return n
}

// Each calls fn for every square, depth ascending, in insertion order.
func (l *Levels) Each(fn func(depth int, sq Square)) {
	for d, b := range l.buckets {
		for _, sq := range b {
			fn(d, sq)
		}
	}
}

// EachReverse calls fn for every square, depth ascending, walking each bucket
// from its last square to its first. This is the paint order of the ornament.
func (l *Levels) EachReverse(fn func(depth int, sq Square)) {
	for d, b := range l.buckets {
		for i := len(b) - 1; i >= 0; i-- {
			fn(d, b[i])
		}
	}
}

// Fingerprint hashes the exact bit pattern of every square in traversal
// order. Two sets with the same fingerprint were generated from the same
// inputs for all practical purposes.
func (l *Levels) Fingerprint() uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 8*13)
	for depth, b := range l.buckets {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(depth))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(b)))
		_, _ = d.Write(buf)
		for _, sq := range b {
			buf = buf[:0]
			for _, f := range [...]float64{
				sq.Origin.X, sq.Origin.Y, sq.HalfSize, sq.Normal.X, sq.Normal.Y,
				sq.P1.X, sq.P1.Y, sq.P2.X, sq.P2.Y, sq.P3.X, sq.P3.Y,
			} {
				buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
			}
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(sq.P4.X))
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(sq.P4.Y))
			_, _ = d.Write(buf)
		}
	}
	return d.Sum64()
}

package columnar

import "math/bits"

// Bitmap is a bit-packed null mask: 64 rows per uint64 word, a set bit marks
// a null row. A bitmap with no nulls keeps no words at all.
type Bitmap struct {
	words []uint64
	n     int
}

// NewBitmap creates an all-clear bitmap over n rows
func NewBitmap(n int) Bitmap {
	return Bitmap{n: n}
}

// BitmapFromBools packs a []bool. A nil slice yields an all-clear bitmap.
func BitmapFromBools(n int, set []bool) Bitmap {
	b := Bitmap{n: n}
	for i, v := range set {
		if v {
			b.Set(i)
		}
	}
	return b
}

// Len returns the number of rows covered
func (b *Bitmap) Len() int { return b.n }

// Get reports whether bit i is set
func (b *Bitmap) Get(i int) bool {
	if b.words == nil {
		return false
	}
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// Set sets bit i
func (b *Bitmap) Set(i int) {
	if b.words == nil {
		b.words = make([]uint64, (b.n+63)>>6)
	}
	b.words[i>>6] |= 1 << (uint(i) & 63)
}

// Clear clears bit i
func (b *Bitmap) Clear(i int) {
	if b.words == nil {
		return
	}
	b.words[i>>6] &^= 1 << (uint(i) & 63)
}

// Count returns the number of set bits
func (b *Bitmap) Count() int {
	total := 0
	for _, w := range b.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Any reports whether at least one bit is set
func (b *Bitmap) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

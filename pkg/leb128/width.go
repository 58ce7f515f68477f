package leb128

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Unsigned is the set of fixed width unsigned integer types that can be
// encoded and decoded.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Width is the bit width of a decoded integer.
type Width uint8

const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
	W64 Width = 64

	// PtrWidth is the width of uintptr on the current platform.
	PtrWidth Width = 32 << (^uintptr(0) >> 63)
)

// MaxLen64 is the maximum length of the encoding of a 64-bit value.
const MaxLen64 = 10

// WidthOf returns the width of T.
func WidthOf[T Unsigned]() Width {
	return Width(bits.Len64(uint64(^T(0))))
}

// Valid returns true if w is one of the supported widths.
func (w Width) Valid() bool {
	switch w {
	case W8, W16, W32, W64:
		return true
	}
	return false
}

// MaxLen returns the maximum number of bytes the decoder will read for a
// value of width w.
func (w Width) MaxLen() int {
	return (int(w) + 6) / 7
}

// Max returns the largest value representable in w bits.
func (w Width) Max() uint64 {
	if w >= W64 {
		return ^uint64(0)
	}
	return 1<<w - 1
}

func (w Width) String() string {
	return strconv.Itoa(int(w))
}

// ParseWidth parses a width given as a bit count ("8", "16", "32", "64")
// or as "ptr" for the platform pointer width.
func ParseWidth(s string) (Width, error) {
	if s == "ptr" || s == "uintptr" {
		return PtrWidth, nil
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid width %q", s)
	}
	w := Width(n)
	if !w.Valid() {
		return 0, fmt.Errorf("unsupported width %d, must be one of 8, 16, 32, 64", n)
	}
	return w, nil
}

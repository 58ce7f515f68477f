package leb128

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUnsigned(t *testing.T) {
	leb128 := []byte{0xE5, 0x8E, 0x26}

	n, c, err := DecodeUnsigned[uint64](leb128)
	if err != nil {
		t.Fatal("Unexpected error: ", err)
	}
	if n != 624485 {
		t.Fatal("Number was not decoded properly, got: ", n, c)
	}

	if c != 3 {
		t.Fatal("Count not returned correctly")
	}
}

func TestDecodeZero(t *testing.T) {
	for _, w := range []Width{W8, W16, W32, W64} {
		v, n, err := Decode([]byte{0x00}, w)
		require.NoError(t, err, "width %d", w)
		assert.Equal(t, uint64(0), v)
		assert.Equal(t, 1, n)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		w      Width
		kind   ErrorKind
		target error
		offset int
	}{
		{"empty", nil, W64, UnexpectedEnd, ErrUnexpectedEnd, 0},
		{"empty 8", []byte{}, W8, UnexpectedEnd, ErrUnexpectedEnd, 0},
		{"truncated", []byte{0x80}, W8, UnexpectedEnd, ErrUnexpectedEnd, 1},
		{"truncated 64", []byte{0xff, 0xff, 0xff}, W64, UnexpectedEnd, ErrUnexpectedEnd, 3},
		{"three groups in 8 bits", []byte{0xff, 0xff, 0x7f}, W8, Overflow, ErrOverflow, 2},
		{"continuation past 8 bits", []byte{0x80, 0x80, 0x00}, W8, Overflow, ErrOverflow, 2},
		{"truncated past 8 bits", []byte{0x80, 0x80}, W8, Overflow, ErrOverflow, 2},
		{"truncated past 64 bits", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}, W64, Overflow, ErrOverflow, 10},
		{"high bits of last group 8", []byte{0xff, 0x02}, W8, Overflow, ErrOverflow, 2},
		{"high bits of last group 16", []byte{0xff, 0xff, 0x04}, W16, Overflow, ErrOverflow, 3},
		{"high bits of last group 32", []byte{0xff, 0xff, 0xff, 0xff, 0x10}, W32, Overflow, ErrOverflow, 5},
		{"continuation on tenth group", []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x00}, W64, Overflow, ErrOverflow, 10},
		{"tenth group too large", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, W64, Overflow, ErrOverflow, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n, err := Decode(tt.in, tt.w)
			require.Error(t, err)
			assert.Equal(t, uint64(0), v)
			assert.Equal(t, tt.offset, n)
			assert.True(t, errors.Is(err, tt.target), "errors.Is(%v, %v)", err, tt.target)
			assert.Equal(t, tt.kind, KindOf(err))

			var derr *DecodeError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.w, derr.Width)
			assert.Equal(t, tt.offset, derr.Offset)
		})
	}
}

func TestDecodeOverflowWithMoreInput(t *testing.T) {
	// 21 significant bits followed by more data must not be truncated.
	in := []byte{0xff, 0xff, 0x7f, 0x05, 0x06}
	_, _, err := DecodeUnsigned[uint8](in)
	require.ErrorIs(t, err, ErrOverflow)
	_, _, err = DecodeUnsigned[uint16](in)
	require.ErrorIs(t, err, ErrOverflow)

	v, n, err := DecodeUnsigned[uint32](in)
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<21-1), v)
	assert.Equal(t, 3, n)
}

func TestDecodeNonCanonical(t *testing.T) {
	v, n, err := Decode([]byte{0x80, 0x80, 0x00}, W32)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	assert.Equal(t, 3, n)

	v, n, err = Decode([]byte{0x81, 0x80, 0x80, 0x00}, W64)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 4, n)

	// Padding still counts against the width.
	_, _, err = Decode([]byte{0x80, 0x80, 0x00}, W8)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDecodeCanonical(t *testing.T) {
	d := Decoder{Width: W32, Canonical: true}

	_, n, err := d.Decode([]byte{0x80, 0x80, 0x00})
	require.ErrorIs(t, err, ErrNonCanonical)
	assert.Equal(t, 3, n)
	assert.Equal(t, NonCanonical, KindOf(err))

	_, _, err = d.Read(bytes.NewReader([]byte{0xff, 0x00}))
	require.ErrorIs(t, err, ErrNonCanonical)

	for _, in := range [][]byte{{0x00}, {0x7f}, {0x80, 0x01}, {0xe5, 0x8e, 0x26}} {
		_, n, err := d.Decode(in)
		require.NoError(t, err, "% x", in)
		assert.Equal(t, len(in), n)
	}
}

func TestDecoderZeroValue(t *testing.T) {
	var d Decoder
	v, n, err := d.Decode(Encode(uint64(math.MaxUint64)))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, 10, n)
	_, _, err = d.Decode([]byte{0x80, 0x00})
	require.NoError(t, err)
}

func TestDecoderInvalidWidth(t *testing.T) {
	assert.Panics(t, func() {
		Decoder{Width: 12}.Decode([]byte{0x00})
	})
}

func TestDecodeMaxValues(t *testing.T) {
	for _, w := range []Width{W8, W16, W32, W64} {
		enc := Encode(w.Max())
		require.Len(t, enc, w.MaxLen())
		v, n, err := Decode(enc, w)
		require.NoError(t, err)
		assert.Equal(t, w.Max(), v)
		assert.Equal(t, len(enc), n)

		if w < W64 {
			_, _, err = Decode(Encode(w.Max()+1), w)
			require.ErrorIs(t, err, ErrOverflow, "width %d", w)
		}
	}
}

func TestRoundTripExhaustive(t *testing.T) {
	for v := 0; v <= math.MaxUint8; v++ {
		out, n, err := DecodeUnsigned[uint8](Encode(uint8(v)))
		if err != nil || out != uint8(v) || n != Size(uint8(v)) {
			t.Fatalf("uint8 %d: got %d, %d, %v", v, out, n, err)
		}
	}
	for v := 0; v <= math.MaxUint16; v++ {
		out, n, err := DecodeUnsigned[uint16](Encode(uint16(v)))
		if err != nil || out != uint16(v) || n != Size(uint16(v)) {
			t.Fatalf("uint16 %d: got %d, %d, %v", v, out, n, err)
		}
	}
}

func TestRoundTripBoundaries(t *testing.T) {
	var values []uint64
	for i := 0; i < 64; i++ {
		values = append(values, 1<<i-1, 1<<i, 1<<i+1)
	}
	values = append(values, math.MaxUint64)

	for _, v := range values {
		out, n, err := DecodeUnsigned[uint64](Encode(v))
		require.NoError(t, err)
		assert.Equal(t, v, out)
		assert.Equal(t, Size(v), n)

		if v <= math.MaxUint32 {
			out32, n, err := DecodeUnsigned[uint32](Encode(uint32(v)))
			require.NoError(t, err)
			assert.Equal(t, uint32(v), out32)
			assert.Equal(t, Size(v), n)
		}
	}
}

func TestRoundTripRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	var buf bytes.Buffer
	var values []uint64
	for i := 0; i < 10000; i++ {
		v := r.Uint64() >> uint(r.Intn(64))
		values = append(values, v)
		_, err := EncodeUnsigned(&buf, v)
		require.NoError(t, err)
	}
	for _, v := range values {
		out, _, err := ReadUnsigned[uint64](&buf)
		require.NoError(t, err)
		require.Equal(t, v, out)
	}
	_, n, err := ReadUnsigned[uint64](&buf)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
	assert.Equal(t, 0, n)
}

func TestReadUnsignedPlainReader(t *testing.T) {
	// iotest.OneByteReader hides ReadByte, forcing the fallback path.
	r := iotest.OneByteReader(bytes.NewReader([]byte{0xe5, 0x8e, 0x26, 0x7f}))
	v, n, err := ReadUnsigned[uint32](r)
	require.NoError(t, err)
	assert.Equal(t, uint32(624485), v)
	assert.Equal(t, 3, n)

	v, n, err = ReadUnsigned[uint32](r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7f), v)
	assert.Equal(t, 1, n)

	_, _, err = ReadUnsigned[uint32](r)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestReadDoesNotLookAhead(t *testing.T) {
	br := bufio.NewReader(bytes.NewReader([]byte{0xac, 0x02, 0xaa}))
	v, n, err := Read(br, W16)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)
	assert.Equal(t, 2, n)
	b, err := br.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), b)
}

func TestReadTruncated(t *testing.T) {
	_, n, err := Read(bytes.NewReader([]byte{0x80}), W8)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
	assert.Equal(t, 1, n)
}

func TestReadFailed(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(bytes.NewReader([]byte{0x80}), iotest.ErrReader(boom))
	_, n, err := ReadUnsigned[uint64](r)
	require.Error(t, err)
	assert.Equal(t, ReadFailed, KindOf(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
	assert.False(t, errors.Is(err, ErrUnexpectedEnd))
}

func TestPointerWidth(t *testing.T) {
	assert.Equal(t, PtrWidth, WidthOf[uintptr]())
	assert.Equal(t, PtrWidth, WidthOf[uint]())
	v, n, err := DecodeUnsigned[uintptr](Encode(uintptr(math.MaxUint32)))
	require.NoError(t, err)
	assert.Equal(t, uintptr(math.MaxUint32), v)
	assert.Equal(t, 5, n)
}

func FuzzDecodeUnsigned(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x80})
	f.Add([]byte{0xe5, 0x8e, 0x26})
	f.Add([]byte{0x80, 0x80, 0x00})
	f.Add(Encode(uint64(math.MaxUint64)))
	f.Fuzz(func(t *testing.T, in []byte) {
		for _, w := range []Width{W8, W16, W32, W64} {
			v, n, err := Decode(in, w)
			if n > w.MaxLen() || n > len(in) {
				t.Fatalf("width %d: consumed %d bytes of % x", w, n, in)
			}
			if err != nil {
				if KindOf(err) == 0 {
					t.Fatalf("width %d: untyped error %v", w, err)
				}
				continue
			}
			if v > w.Max() {
				t.Fatalf("width %d: value %d out of range", w, v)
			}
			if in[n-1]&0x80 != 0 {
				t.Fatalf("width %d: stopped on a continuation byte", w)
			}
			// Re-encoding never produces a longer sequence.
			if Size(v) > n {
				t.Fatalf("width %d: re-encoding of %d longer than input", w, v)
			}
		}
	})
}

func TestDecodeAll(t *testing.T) {
	var buf []byte
	for _, v := range []uint64{0, 127, 128, 624485} {
		buf = AppendUnsigned(buf, v)
	}
	vals, n, err := Decoder{Width: W32}.DecodeAll(buf)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 127, 128, 624485}, vals)
	assert.Equal(t, len(buf), n)

	vals, n, err = Decoder{Width: W8}.DecodeAll(append([]byte{0x05, 0x7f}, 0xff, 0x03))
	require.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, []uint64{5, 127}, vals)
	assert.Equal(t, 2, n)

	vals, n, err = Decoder{}.DecodeAll(nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
	assert.Equal(t, 0, n)
}

package leb128

import (
	"fmt"
	"io"
)

// Decoder decodes unsigned Little Endian Base 128 values of a fixed width.
// The zero value decodes 64-bit values and accepts non-canonical
// encodings.
type Decoder struct {
	// Width is the target width. Zero means W64.
	Width Width
	// Canonical rejects encodings that end with a redundant zero group,
	// such as 0x80 0x00 for the value 0.
	Canonical bool
}

func (d Decoder) width() Width {
	if d.Width == 0 {
		return W64
	}
	if !d.Width.Valid() {
		panic(fmt.Sprintf("leb128: unsupported width %d", d.Width))
	}
	return d.Width
}

// Decode decodes a value from the start of buf. It returns the value and
// the number of bytes consumed. On failure the returned count is the number
// of bytes examined before the error was detected.
func (d Decoder) Decode(buf []byte) (uint64, int, error) {
	s := state{w: d.width(), canonical: d.Canonical}
	for _, b := range buf {
		done, err := s.add(b)
		if err != nil {
			return 0, s.n, err
		}
		if done {
			return s.result, s.n, nil
		}
	}
	return 0, s.n, s.errorf(UnexpectedEnd, nil)
}

// Read decodes a value from r, reading exactly as many bytes as the
// encoding occupies. If r implements io.ByteReader it is used directly,
// otherwise r is read one byte at a time.
func (d Decoder) Read(r io.Reader) (uint64, int, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &byteReader{r: r}
	}
	s := state{w: d.width(), canonical: d.Canonical}
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return 0, s.n, s.errorf(UnexpectedEnd, nil)
			}
			return 0, s.n, s.errorf(ReadFailed, err)
		}
		done, err := s.add(b)
		if err != nil {
			return 0, s.n, err
		}
		if done {
			return s.result, s.n, nil
		}
	}
}

// Decode decodes a value of width w from the start of buf.
func Decode(buf []byte, w Width) (uint64, int, error) {
	return Decoder{Width: w}.Decode(buf)
}

// Read decodes a value of width w from r.
func Read(r io.Reader, w Width) (uint64, int, error) {
	return Decoder{Width: w}.Read(r)
}

// DecodeUnsigned decodes an unsigned Little Endian Base 128
// represented number from the start of buf.
func DecodeUnsigned[T Unsigned](buf []byte) (T, int, error) {
	v, n, err := Decoder{Width: WidthOf[T]()}.Decode(buf)
	return T(v), n, err
}

// ReadUnsigned decodes an unsigned Little Endian Base 128 represented
// number from r.
func ReadUnsigned[T Unsigned](r io.Reader) (T, int, error) {
	v, n, err := Decoder{Width: WidthOf[T]()}.Read(r)
	return T(v), n, err
}

// state accumulates one encoded value.
type state struct {
	result    uint64
	shift     uint
	n         int
	w         Width
	canonical bool
}

// add consumes b and reports whether it terminated the encoding.
func (s *state) add(b byte) (bool, error) {
	s.n++
	group := uint64(b & 0x7f)
	w := uint(s.w)
	if s.shift+7 > w && group>>(w-s.shift) != 0 {
		return false, s.errorf(Overflow, nil)
	}
	s.result |= group << s.shift
	if b&0x80 == 0 {
		if s.canonical && group == 0 && s.n > 1 {
			return false, s.errorf(NonCanonical, nil)
		}
		return true, nil
	}
	s.shift += 7
	if s.shift >= w {
		// The next group would start past the last bit of the result.
		return false, s.errorf(Overflow, nil)
	}
	return false, nil
}

func (s *state) errorf(kind ErrorKind, err error) error {
	return &DecodeError{Kind: kind, Width: s.w, Offset: s.n, Err: err}
}

// byteReader adapts an io.Reader without a ReadByte method.
type byteReader struct {
	r   io.Reader
	buf [1]byte
}

func (br *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(br.r, br.buf[:]); err != nil {
		return 0, err
	}
	return br.buf[0], nil
}

// DecodeAll decodes consecutive values from buf until it is used up. It
// returns the values decoded so far and the number of bytes they occupy;
// on error the count stops before the encoding that failed.
func (d Decoder) DecodeAll(buf []byte) ([]uint64, int, error) {
	var vals []uint64
	off := 0
	for off < len(buf) {
		v, n, err := d.Decode(buf[off:])
		if err != nil {
			return vals, off, err
		}
		vals = append(vals, v)
		off += n
	}
	return vals, off, nil
}

package leb128

import (
	"io"
)

// AppendUnsigned appends the unsigned Little Endian Base 128 encoding of x
// to dst and returns the extended buffer.
func AppendUnsigned[T Unsigned](dst []byte, x T) []byte {
	v := uint64(x)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// Encode returns the unsigned Little Endian Base 128 encoding of x.
func Encode[T Unsigned](x T) []byte {
	return AppendUnsigned(make([]byte, 0, Size(x)), x)
}

// EncodeUnsigned encodes x to the unsigned Little Endian Base 128 format
// into out and returns the number of bytes written. The only possible error
// is one returned by out.
func EncodeUnsigned[T Unsigned](out io.ByteWriter, x T) (int, error) {
	v := uint64(x)
	n := 0
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		if err := out.WriteByte(b); err != nil {
			return n, err
		}
		n++
		if v == 0 {
			return n, nil
		}
	}
}

// WriteUnsigned writes the encoding of x to w with a single call to Write.
func WriteUnsigned[T Unsigned](w io.Writer, x T) (int, error) {
	var buf [MaxLen64]byte
	return w.Write(AppendUnsigned(buf[:0], x))
}

// PutUnsigned encodes x into buf and returns the number of bytes written.
// If the buffer is too small, PutUnsigned will panic.
func PutUnsigned[T Unsigned](buf []byte, x T) int {
	v := uint64(x)
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// Size returns the number of bytes needed to encode x.
func Size[T Unsigned](x T) int {
	v := uint64(x)
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

package leb128

import (
	"errors"
	"fmt"
)

// ErrorKind describes why a decode failed.
type ErrorKind uint8

const (
	// UnexpectedEnd means the source was exhausted before a byte with the
	// continuation bit clear was found.
	UnexpectedEnd ErrorKind = iota + 1
	// Overflow means the value needs more bits than the target width.
	Overflow
	// NonCanonical means the encoding ends with a redundant zero group.
	// Only reported by decoders that enforce canonical encodings.
	NonCanonical
	// ReadFailed means the underlying reader returned an error other than
	// io.EOF.
	ReadFailed
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedEnd:
		return "unexpected end of input"
	case Overflow:
		return "overflow"
	case NonCanonical:
		return "non-canonical encoding"
	case ReadFailed:
		return "read failed"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

var (
	ErrUnexpectedEnd = errors.New("leb128: unexpected end of input")
	ErrOverflow      = errors.New("leb128: value overflows target width")
	ErrNonCanonical  = errors.New("leb128: non-canonical encoding")
)

// DecodeError is returned by every decoding function of this package.
type DecodeError struct {
	Kind ErrorKind
	// Width is the target width of the failed decode.
	Width Width
	// Offset is the number of bytes taken from the source when the error
	// was detected.
	Offset int
	// Err is the error returned by the underlying reader, if any.
	Err error
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case Overflow:
		return fmt.Sprintf("leb128: value does not fit in %d bits (at byte %d)", e.Width, e.Offset)
	case ReadFailed:
		return fmt.Sprintf("leb128: read failed after %d bytes: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("leb128: %s after %d bytes", e.Kind, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match a DecodeError against ErrUnexpectedEnd,
// ErrOverflow and ErrNonCanonical.
func (e *DecodeError) Is(target error) bool {
	switch target {
	case ErrUnexpectedEnd:
		return e.Kind == UnexpectedEnd
	case ErrOverflow:
		return e.Kind == Overflow
	case ErrNonCanonical:
		return e.Kind == NonCanonical
	}
	return false
}

// KindOf returns the ErrorKind of err, or 0 if err is not a *DecodeError.
func KindOf(err error) ErrorKind {
	var derr *DecodeError
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return 0
}

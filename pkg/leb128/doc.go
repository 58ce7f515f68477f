// Package leb128 provides encoders and decoders for the unsigned Little
// Endian Base 128 format.
// The Little Endian Base 128 format is defined in the DWARF v4 standard,
// section 7.6, page 161 and following. The same encoding is used by the
// WebAssembly binary format and by protocol buffers varints.
//
// Only fixed width unsigned integers are supported. Decoding is lenient
// about redundant zero groups by default; use a Decoder with Canonical set
// to reject them.
package leb128

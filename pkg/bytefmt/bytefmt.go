// Package bytefmt converts between byte sequences and the textual forms
// accepted and printed by the uleb128 command line tools.
package bytefmt

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Style is an output style for Format.
type Style int

const (
	// Hex prints space separated lower case hex bytes: e5 8e 26.
	Hex Style = iota
	// GoSyntax prints a Go byte slice literal: []byte{0xe5, 0x8e, 0x26}.
	GoSyntax
)

// ParseStyle returns the style named s.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "hex", "":
		return Hex, nil
	case "go":
		return GoSyntax, nil
	}
	return Hex, fmt.Errorf("unknown output format %q", s)
}

// Format returns b formatted in the given style.
func Format(b []byte, style Style) string {
	var sb strings.Builder
	if style == GoSyntax {
		sb.WriteString("[]byte{")
		for i, c := range b {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "0x%02x", c)
		}
		sb.WriteString("}")
		return sb.String()
	}
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}

// Parse parses user supplied hex bytes. Bytes may be separated by spaces,
// commas or colons, may carry a 0x prefix, and may be run together
// ("e58e26"). A Go byte slice literal as printed by Format is accepted too.
func Parse(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[]byte")
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == ':' || r == '\t' || r == '\n'
	})
	var out []byte
	for _, f := range fields {
		tok := f
		if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
			tok = tok[2:]
		}
		if len(tok) == 1 {
			tok = "0" + tok
		}
		if len(tok) == 0 || len(tok)%2 != 0 {
			return nil, fmt.Errorf("invalid byte sequence %q", f)
		}
		b, err := hex.DecodeString(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid byte sequence %q", f)
		}
		out = append(out, b...)
	}
	return out, nil
}

// ParseUint parses a value written in decimal or with a 0x, 0o or 0b
// prefix, and checks that it fits in bits bits.
func ParseUint(s string, bits int) (uint64, error) {
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			base = 0
		}
	}
	v, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), base, bits)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, fmt.Errorf("value %s does not fit in %d bits", s, bits)
		}
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

package rdbgxml

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	xtextunicode "golang.org/x/text/encoding/unicode"
)

// BinaryStack is the synthetic call stack recovered from the binary
// form of a ping response: a module URI plus a run of UTF-16LE
// procedure/presentation names.
type BinaryStack struct {
	ObjectID   string
	PropertyID string
	Version    string

	// Presentations is ordered current-first (innermost frame first);
	// the wire order is root-first, so ParseBinaryStack reverses it.
	Presentations []string
}

// uriPattern matches the "urn:module:md:<uuid>(@property='<uuid>';version='…')"
// header that precedes the UTF-16LE name tail.
var uriPattern = regexp.MustCompile(`^urn:module:md:([0-9a-fA-F-]{36})\(@property='([0-9a-fA-F-]{36})'(?:;version='([^']*)')?\)`)

// ParseBinaryStack parses the binary ping payload described in
// SPEC_FULL.md §4.1: an ASCII URI header followed by a UTF-16LE tail of
// NUL-separated procedure/presentation strings.
func ParseBinaryStack(raw []byte) (*BinaryStack, error) {
	idx := bytes.IndexByte(raw, ')')
	if idx < 0 {
		return nil, errors.New("rdbgxml: binary payload missing uri terminator")
	}
	head := raw[:idx+1]
	tail := raw[idx+1:]

	m := uriPattern.FindSubmatch(head)
	if m == nil {
		return nil, errors.Errorf("rdbgxml: binary payload uri does not match expected shape: %q", head)
	}

	names, err := decodeUTF16LENames(tail)
	if err != nil {
		return nil, err
	}

	pres := make([]string, len(names))
	for i, n := range names {
		pres[len(names)-1-i] = n
	}

	return &BinaryStack{
		ObjectID:      string(m[1]),
		PropertyID:    string(m[2]),
		Version:       string(m[3]),
		Presentations: pres,
	}, nil
}

func decodeUTF16LENames(tail []byte) ([]string, error) {
	dec := xtextunicode.UTF16(xtextunicode.LittleEndian, xtextunicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(tail)
	if err != nil {
		return nil, errors.Wrap(err, "rdbgxml: utf16le decode")
	}

	var names []string
	for _, p := range strings.Split(string(decoded), "\x00") {
		if isPresentable(p) {
			names = append(names, p)
		}
	}
	return names, nil
}

// isPresentable filters the UTF-16LE name runs down to those containing
// at least one Cyrillic letter, ASCII letter, digit, or dot, discarding
// padding/garbage runs produced by the fixed-width decode.
func isPresentable(s string) bool {
	for _, r := range s {
		switch {
		case r == '.':
			return true
		case unicode.Is(unicode.Cyrillic, r):
			return true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return true
		case r >= '0' && r <= '9':
			return true
		}
	}
	return false
}

package rdbgxml

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// RequestCharset selects the byte encoding used for the request body.
// The legacy RDBG server interprets expression text strictly in the
// charset it was built against; most builds expect Windows-1251 so that
// Cyrillic identifiers round-trip, but some accept UTF-8.
type RequestCharset int

const (
	CharsetWindows1251 RequestCharset = iota
	CharsetUTF8
)

func (c RequestCharset) String() string {
	if c == CharsetUTF8 {
		return "utf-8"
	}
	return "windows-1251"
}

// Encode transcodes a UTF-8 request body into the given charset. UTF-8
// is returned unchanged; unmappable runes fall back to '?' rather than
// failing the request, since a best-effort body is better than none for
// debugging use.
func Encode(body string, charset RequestCharset) ([]byte, error) {
	if charset == CharsetUTF8 {
		return []byte(body), nil
	}
	out := make([]byte, 0, len(body))
	for _, r := range body {
		b, ok := charmap.Windows1251.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out, nil
}

// writer is a minimal hand-rolled XML serializer used instead of
// encoding/xml for request bodies. encoding/xml's struct-tag based
// namespace support cannot express the per-dialect namespace-prefix
// placement the RDBG server requires (default namespace on some
// elements, a literal "debugRDBGRequestResponse:" prefix on others,
// duplicated elements); building the body by hand keeps that control
// explicit instead of fighting the marshaller.
type writer struct {
	buf   bytes.Buffer
	stack []string
}

func newWriter() *writer {
	return &writer{}
}

func (w *writer) open(name string, attrs ...string) *writer {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.buf.WriteByte(' ')
		w.buf.WriteString(attrs[i])
		w.buf.WriteString(`="`)
		w.buf.WriteString(EscapeAttr(attrs[i+1]))
		w.buf.WriteByte('"')
	}
	w.buf.WriteByte('>')
	w.stack = append(w.stack, name)
	return w
}

func (w *writer) text(s string) *writer {
	w.buf.WriteString(EscapeText(s))
	return w
}

func (w *writer) elem(name, text string) *writer {
	w.open(name)
	w.text(text)
	w.close()
	return w
}

func (w *writer) close() *writer {
	n := len(w.stack) - 1
	name := w.stack[n]
	w.stack = w.stack[:n]
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
	return w
}

func (w *writer) raw(s string) *writer {
	w.buf.WriteString(s)
	return w
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

// EscapeText escapes the five XML metacharacters that may appear in
// interpolated element text.
func EscapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeAttr escapes the metacharacters that may appear in an
// interpolated attribute value.
func EscapeAttr(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

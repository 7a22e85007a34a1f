package rdbgxml

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// PingPayload is the decoded form of a ping response's <data> envelope:
// either a regular XML response body, or a synthesized stack derived
// from the binary UTF-16LE form.
type PingPayload struct {
	XML    *Node
	Binary *BinaryStack
}

// DecodeDataEnvelope implements the two-step fallback from SPEC_FULL.md
// §4.1: base64-decode the payload, then try parsing it as XML; if that
// fails, treat it as the binary ping payload.
func DecodeDataEnvelope(b64 string) (*PingPayload, error) {
	clean := stripWhitespace(b64)
	raw, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, errors.Wrap(err, "rdbgxml: base64 decode data envelope")
	}

	if node, err := ParseResponse(raw); err == nil {
		return &PingPayload{XML: node}, nil
	}

	bs, err := ParseBinaryStack(raw)
	if err != nil {
		return nil, errors.Wrap(err, "rdbgxml: data envelope is neither XML nor a recognizable binary stack")
	}
	return &PingPayload{Binary: bs}, nil
}

// DecodeBase64String best-effort decodes a base64-over-UTF-8 string
// value (used for presentation/moduleIDStr/valueString/pres fields).
// A decode failure falls back to the raw string, since several of
// these fields are also sent un-encoded depending on server build.
func DecodeBase64String(s string) string {
	clean := stripWhitespace(s)
	if clean == "" {
		return s
	}
	raw, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return s
	}
	return string(raw)
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

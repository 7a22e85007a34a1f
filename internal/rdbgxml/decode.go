package rdbgxml

import (
	"bytes"
	encxml "encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Node is a namespace-stripped XML element tree. encoding/xml.Decoder
// already splits a qualified name into Space/Local at the syntax level,
// so using Name.Local throughout gives us the "parser strips namespace
// prefixes" behavior the response shape requires without extra work.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// alwaysArray lists the elements the server may emit as a single bare
// element when there is exactly one, but which callers must always be
// able to treat as an array.
var alwaysArray = map[string]bool{
	"result":                 true,
	"callStack":              true,
	"id":                     true,
	"item":                   true,
	"moduleBPInfo":           true,
	"valueOfContextPropInfo": true,
	"localVariables":         true,
}

// Get returns the first child with the given local name, or nil.
func (n *Node) Get(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every child with the given local name, normalized to a
// (possibly empty) slice even for elements not in alwaysArray.
func (n *Node) All(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// ParseResponse decodes a top-level RDBG <response> body into a Node
// tree. Responses are always decoded as UTF-8 regardless of the
// charset the request was sent in.
func ParseResponse(data []byte) (*Node, error) {
	dec := encxml.NewDecoder(bytes.NewReader(data))
	root, err := parseElement(dec, nil)
	if err != nil {
		return nil, errors.Wrap(err, "rdbgxml: parse response")
	}
	if root == nil {
		return nil, errors.New("rdbgxml: empty response body")
	}
	return root, nil
}

func parseElement(dec *encxml.Decoder, start *encxml.StartElement) (*Node, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}

		switch t := tok.(type) {
		case encxml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if err := fillChildren(dec, n); err != nil {
				return nil, err
			}
			return n, nil
		case encxml.EndElement:
			// Stray end element with nothing before it; shouldn't happen
			// at the top level, but don't loop forever.
			return nil, nil
		}
	}
}

func fillChildren(dec *encxml.Decoder, n *Node) error {
	var text bytes.Buffer
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case encxml.StartElement:
			child := &Node{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				child.Attrs[a.Name.Local] = a.Value
			}
			if err := fillChildren(dec, child); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case encxml.CharData:
			text.Write(t)
		case encxml.EndElement:
			n.Text = text.String()
			return nil
		}
	}
}

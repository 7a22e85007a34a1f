package rdbgxml

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xtextunicode "golang.org/x/text/encoding/unicode"
)

func TestParseBinaryStackReversesPresentations(t *testing.T) {
	objectID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	propertyID := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	uri := "urn:module:md:" + objectID + "(@property='" + propertyID + "')"

	enc := xtextunicode.UTF16(xtextunicode.LittleEndian, xtextunicode.IgnoreBOM).NewEncoder()
	tail, err := enc.String("Proc1\x00Proc2\x00Proc3")
	require.NoError(t, err)

	bs, err := ParseBinaryStack(append([]byte(uri), []byte(tail)...))
	require.NoError(t, err)
	assert.Equal(t, objectID, bs.ObjectID)
	assert.Equal(t, propertyID, bs.PropertyID)
	assert.Equal(t, []string{"Proc3", "Proc2", "Proc1"}, bs.Presentations)
}

func TestParseBinaryStackRejectsMalformedURI(t *testing.T) {
	_, err := ParseBinaryStack([]byte("not a uri at all"))
	assert.Error(t, err)
}

func TestDecodeDataEnvelopeXML(t *testing.T) {
	raw := []byte(`<response><result><item>ok</item></result></response>`)
	b64 := base64.StdEncoding.EncodeToString(raw)

	p, err := DecodeDataEnvelope(b64)
	require.NoError(t, err)
	require.NotNil(t, p.XML)
	assert.Nil(t, p.Binary)
}

func TestDecodeDataEnvelopeBinaryFallback(t *testing.T) {
	objectID := "cccccccc-cccc-cccc-cccc-cccccccccccc"
	propertyID := "dddddddd-dddd-dddd-dddd-dddddddddddd"
	uri := "urn:module:md:" + objectID + "(@property='" + propertyID + "')"

	enc := xtextunicode.UTF16(xtextunicode.LittleEndian, xtextunicode.IgnoreBOM).NewEncoder()
	tail, err := enc.String("Main")
	require.NoError(t, err)

	raw := append([]byte(uri), []byte(tail)...)
	b64 := base64.StdEncoding.EncodeToString(raw)

	p, err := DecodeDataEnvelope(b64)
	require.NoError(t, err)
	assert.Nil(t, p.XML)
	require.NotNil(t, p.Binary)
	assert.Equal(t, objectID, p.Binary.ObjectID)
	assert.Equal(t, propertyID, p.Binary.PropertyID)
}

func TestEventFromBinaryStackCarriesIDs(t *testing.T) {
	bs := &BinaryStack{ObjectID: "o1", PropertyID: "p1", Presentations: []string{"Inner", "Outer"}}
	ev := EventFromBinaryStack(bs)
	assert.Equal(t, EventCallStackFormed, ev.Kind)
	assert.Equal(t, "o1", ev.ObjectID)
	assert.Equal(t, "p1", ev.PropertyID)
	require.Len(t, ev.Stack, 2)
	assert.Equal(t, "Inner", ev.Stack[0].Presentation)
}

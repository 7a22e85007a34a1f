package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandAutoAttachTypesAliases(t *testing.T) {
	allowed := ExpandAutoAttachTypes([]string{"Client"})
	assert.True(t, allowed["ManagedClient"])
	assert.True(t, allowed["WebClient"])
	assert.True(t, allowed["MobileClient"])
	assert.True(t, allowed["Client"])
	assert.False(t, allowed["Server"])
}

func TestExpandAutoAttachTypesPassThrough(t *testing.T) {
	allowed := ExpandAutoAttachTypes([]string{"ServerEmulation"})
	assert.True(t, allowed["ServerEmulation"])
	assert.False(t, allowed["Server"])
}

func TestAutoAttachMatchesEmptySetMatchesNothing(t *testing.T) {
	allowed := ExpandAutoAttachTypes(nil)
	assert.False(t, autoAttachMatches(allowed, "Client"))
}

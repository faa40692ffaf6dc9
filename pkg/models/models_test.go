package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempIDs(t *testing.T) {
	id := NewTempID()
	other := NewTempID()

	assert.True(t, IsTempID(id))
	assert.NotEqual(t, id, other)
	assert.False(t, IsTempID("0b4f6f64-8d2c-4f0e-9b6a-000000000000"), "server ids are not temp ids")
}

func TestSharingPolicyValid(t *testing.T) {
	assert.True(t, SharingPrivate.Valid())
	assert.True(t, SharingPublic.Valid())
	assert.False(t, SharingPolicy("everyone").Valid())
	assert.False(t, SharingPolicy("").Valid())
}

func TestCloneTabsIsIndependent(t *testing.T) {
	original := []Tab{{ID: "a", Title: "one"}, {ID: "b", Title: "two"}}

	clone := CloneTabs(original)
	require.Equal(t, original, clone)

	clone[0].Title = "changed"
	assert.Equal(t, "one", original[0].Title)

	assert.Nil(t, CloneTabs(nil))
}

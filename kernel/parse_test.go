package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingle(t *testing.T) {
	k, err := Parse("SEIso", 2)
	require.NoError(t, err)
	_, ok := k.(*SEIso)
	assert.True(t, ok)
}

func TestParseSumIsRightAssociative(t *testing.T) {
	k, err := Parse("Const+SEIso+RQIso", 2)
	require.NoError(t, err)
	top, ok := k.(*Sum)
	require.True(t, ok)
	_, ok = top.K1.(*Const)
	assert.True(t, ok)
	inner, ok := top.K2.(*Sum)
	require.True(t, ok)
	_, ok = inner.K1.(*SEIso)
	assert.True(t, ok)
	_, ok = inner.K2.(*RQIso)
	assert.True(t, ok)
}

func TestParseProd(t *testing.T) {
	k, err := Parse("SEArd*LinearARD", 3)
	require.NoError(t, err)
	prod, ok := k.(*Prod)
	require.True(t, ok)
	assert.Equal(t, 3, prod.K1.NHP())
	assert.Equal(t, 3, prod.K2.NHP())
}

func TestParseUnknownName(t *testing.T) {
	_, err := Parse("Bogus", 2)
	require.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("", 2)
	require.Error(t, err)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureSetWithAndWithout(t *testing.T) {
	fs := FeatureSet{"dashboard", "products"}

	added := fs.With("workers")
	assert.True(t, added.Contains("workers"))
	assert.False(t, fs.Contains("workers"), "With returns a new set")

	same := added.With("workers")
	assert.Len(t, same, 3, "adding a present feature does not duplicate it")

	removed := added.Without("workers")
	assert.False(t, removed.Contains("workers"))
	assert.True(t, added.Contains("workers"), "Without returns a new set")

	unchanged := fs.Without("payroll")
	assert.ElementsMatch(t, fs, unchanged)
}

func TestFeatureSetCloneIsIndependent(t *testing.T) {
	fs := FeatureSet{"dashboard"}
	clone := fs.Clone()
	clone[0] = "mutated"
	assert.Equal(t, "dashboard", fs[0])
}

func TestFeatureSetScanValueRoundTrip(t *testing.T) {
	fs := FeatureSet{"dashboard", "workers"}
	value, err := fs.Value()
	require.NoError(t, err)

	var decoded FeatureSet
	require.NoError(t, decoded.Scan(value))
	assert.ElementsMatch(t, fs, decoded)

	var fromNil FeatureSet
	require.NoError(t, fromNil.Scan(nil))
	assert.Empty(t, fromNil)
}

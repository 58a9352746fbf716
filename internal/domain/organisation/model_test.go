package organisation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, value := range []string{"ZA", "BAZB"} {
		typ, err := ParseType(value)
		require.NoError(t, err)
		assert.Equal(t, Type(value), typ)
	}

	_, err := ParseType("XX")
	assert.Error(t, err)
}

func TestParseFeatureType(t *testing.T) {
	for _, value := range []string{"AGB", "URA", "OIN", "HRN", "KVK"} {
		typ, err := ParseFeatureType(value)
		require.NoError(t, err)
		assert.Equal(t, FeatureType(value), typ)
	}

	_, err := ParseFeatureType("BSN")
	assert.Error(t, err)
}

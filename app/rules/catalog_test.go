package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalogDefault(t *testing.T) {
	catalog, err := LoadCatalogFile("")
	require.NoError(t, err)

	assert.NotEmpty(t, catalog.Foods())
	assert.NotEmpty(t, catalog.Disclaimer())
	assert.Equal(t, 12, catalog.Safety().NoSaltSugarUntilMonths)
}

func TestLoadCatalogDuplicateFood(t *testing.T) {
	_, err := LoadCatalog([]byte(`
age_buckets:
  - {name: "6-8", min_months: 6, max_months: 9}
foods:
  - {name: rice porridge, min_age_months: 6}
  - {name: " Rice  Porridge ", min_age_months: 7}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate food key")
}

func TestLoadCatalogUnknownBucket(t *testing.T) {
	_, err := LoadCatalog([]byte(`
age_buckets:
  - {name: "6-8", min_months: 6, max_months: 9}
foods:
  - name: rice porridge
    min_age_months: 6
    max_spoons: {"9-11": 4}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown age bucket")
}

func TestLoadCatalogMinAgeBeyondMaxSafeAge(t *testing.T) {
	_, err := LoadCatalog([]byte(`
age_buckets:
  - {name: "6-8", min_months: 6, max_months: 9}
foods:
  - {name: rice porridge, min_age_months: 24}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum safe age")
}

func TestLoadCatalogUnknownTexture(t *testing.T) {
	_, err := LoadCatalog([]byte(`
age_buckets:
  - {name: "6-8", min_months: 6, max_months: 9}
texture_by_age:
  "6-8": [crunchy]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown texture")
}

func TestLookup(t *testing.T) {
	catalog, err := LoadCatalogFile("")
	require.NoError(t, err)

	rule, ok := catalog.Lookup("Ragi Porridge")
	require.True(t, ok)
	assert.Equal(t, "ragi porridge", rule.Name)

	// Substring match resolves dish variations to the base rule.
	rule, ok = catalog.Lookup("ragi porridge with ghee")
	require.True(t, ok)
	assert.Equal(t, "ragi porridge", rule.Name)

	_, ok = catalog.Lookup("pizza")
	assert.False(t, ok)
}

func TestAgeBucket(t *testing.T) {
	catalog, err := LoadCatalogFile("")
	require.NoError(t, err)

	assert.Equal(t, "0-5", catalog.AgeBucket(0))
	assert.Equal(t, "6-8", catalog.AgeBucket(6))
	assert.Equal(t, "6-8", catalog.AgeBucket(8))
	assert.Equal(t, "9-11", catalog.AgeBucket(9))
	assert.Equal(t, "12+", catalog.AgeBucket(12))
	assert.Equal(t, "12+", catalog.AgeBucket(36))
}

func TestSafeDefaultNeverEmpty(t *testing.T) {
	catalog, err := LoadCatalogFile("")
	require.NoError(t, err)

	for _, age := range []int{0, 4, 6, 9, 12, 48} {
		def := catalog.SafeDefault(age)
		assert.NotEmpty(t, def.Dish, "age %d", age)
		assert.NotZero(t, def.Spoons, "age %d", age)
		assert.NotEmpty(t, def.Texture, "age %d", age)
	}
}

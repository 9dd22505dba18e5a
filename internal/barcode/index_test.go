package barcode

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Membership(t *testing.T) {
	idx := New(1000, 0.001)
	idx.Add("6191234567890")
	idx.Add("6190000000001")

	assert.True(t, idx.MightContain("6191234567890"))
	assert.True(t, idx.MightContain("6190000000001"))
	assert.False(t, idx.MightContain("0000000000000"), "unseen code should be ruled out")
}

func TestIndex_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barcodes.bloom")

	idx := New(1000, 0.001)
	codes := []string{"1111111111111", "2222222222222", "3333333333333"}
	for _, c := range codes {
		idx.Add(c)
	}
	require.NoError(t, idx.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	for _, c := range codes {
		assert.True(t, loaded.MightContain(c), "code %s lost in round trip", c)
	}
	assert.False(t, loaded.MightContain("9999999999999"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.bloom"))
	require.Error(t, err)
}

// pkg/qr/qr_test.go
package qr

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dattu/paperback/pkg/document"
)

func TestAlnumCapacity(t *testing.T) {
	// Spot checks against ISO/IEC 18004 table 7.
	require.Equal(t, 25, AlnumCapacity(1, ECLow))
	require.Equal(t, 10, AlnumCapacity(1, ECHigh))
	require.Equal(t, 426, AlnumCapacity(15, ECQuartile))
	require.Equal(t, 4296, AlnumCapacity(40, ECLow))
	require.Equal(t, 0, AlnumCapacity(0, ECLow))
	require.Equal(t, 0, AlnumCapacity(41, ECLow))

	// Capacity grows with version and shrinks with correction level.
	for v := 2; v <= 40; v++ {
		for _, l := range []ECLevel{ECLow, ECMedium, ECQuartile, ECHigh} {
			require.Greater(t, AlnumCapacity(v, l), AlnumCapacity(v-1, l), "version %d level %s", v, l)
		}
		require.Greater(t, AlnumCapacity(v, ECLow), AlnumCapacity(v, ECHigh), "version %d", v)
	}
}

func TestSmallestVersion(t *testing.T) {
	require.Equal(t, 1, SmallestVersion(10, ECHigh))
	require.Equal(t, 2, SmallestVersion(11, ECHigh))
	require.Equal(t, 40, SmallestVersion(4296, ECLow))
	require.Equal(t, 0, SmallestVersion(4297, ECLow))
}

func TestParseECLevel(t *testing.T) {
	for s, want := range map[string]ECLevel{"L": ECLow, "m": ECMedium, "Q": ECQuartile, "h": ECHigh} {
		got, ok := ParseECLevel(s)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	_, ok := ParseECLevel("x")
	require.False(t, ok)
}

func TestEncodeDecodeSymbolRoundTrip(t *testing.T) {
	// A base58-alphabet string of the size a real shard payload has.
	text := ""
	alphabet := "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	for i := 0; i < 400; i++ {
		text += string(alphabet[i%len(alphabet)])
	}

	enc := NewEncoder(ECQuartile, 4)
	img, err := enc.EncodeSymbol(text, document.CellLarge)
	require.NoError(t, err)
	require.NotNil(t, img)

	got := NewDecoder().DecodeImage(img)
	require.Contains(t, got, text)
}

func TestDecodeBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	require.Empty(t, NewDecoder().DecodeImage(img))
}

package sclient

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenRejectsEmptyRoutingParams(t *testing.T) {
	_, err := KeyGen(RoutingParams{}, defaultCos)
	assert.Error(t, err)
}

func TestKeyGenLayoutMatchesByteTable(t *testing.T) {
	params := RoutingParams{BucketName: "vogosphere", Namespace: "poem", Owner: "jeltz"}
	cos := byte(0x70)

	key, err := KeyGen(params, cos)
	require.NoError(t, err)
	require.Len(t, key, 40)
	assert.Equal(t, strings.ToUpper(key), key)

	raw, err := hex.DecodeString(key)
	require.NoError(t, err)
	require.Len(t, raw, 20)

	hashBucket := md5.Sum([]byte(params.BucketName)) //nolint:gosec
	hashNamespace := md5.Sum([]byte(params.Namespace)) //nolint:gosec

	assert.Equal(t, hashNamespace[0], raw[8])
	assert.Equal(t, byte(0x59), raw[15])
	assert.Equal(t, cos, raw[19])
	assert.Equal(t, hashBucket[1], raw[12])
	assert.Equal(t, hashBucket[2], raw[13])
	assert.Equal(t, hashBucket[3], raw[14])
}

// TestKeyGenS1Determinism is spec §8 scenario S1: for 600 invocations with
// fixed params, every key ends in the cos hex pair and carries the sid hex
// pair at hex positions 30-31; only the random bytes vary.
func TestKeyGenS1Determinism(t *testing.T) {
	params := RoutingParams{BucketName: "vogosphere", Namespace: "poem", Owner: "jeltz"}
	cos := byte(0x70)

	seen := map[string]bool{}
	for i := 0; i < 600; i++ {
		key, err := KeyGen(params, cos)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, "70"))
		assert.Equal(t, "59", key[30:32])
		seen[key] = true
	}
	// Random bytes make repeats exceedingly unlikely across 600 draws.
	assert.Greater(t, len(seen), 590)
}

func TestKeyGenDerivedBytesStableAcrossInvocations(t *testing.T) {
	params := RoutingParams{BucketName: "b", Namespace: "n", Owner: "o"}
	cos := byte(0x02)

	var first string
	for i := 0; i < 50; i++ {
		key, err := KeyGen(params, cos)
		require.NoError(t, err)
		derived := key[16:30] // hex chars covering bytes 8..14
		if i == 0 {
			first = derived
		} else {
			assert.Equal(t, first, derived)
		}
	}
}

package keygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBundle(t *testing.T) {
	bundle, err := GenerateBundle("carol", 3)
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.Identity.Priv)
	assert.NotEmpty(t, bundle.Identity.Pub)
	require.Len(t, bundle.OneTime, 3)

	// The signed prekey verifies against the identity key.
	assert.NoError(t, Verify(bundle.Identity.Pub, bundle.SignedPreKey.Pub, bundle.PreKeySig))
}

func TestSignVerifyRejectsTamperedMessage(t *testing.T) {
	pair, err := NewPair()
	require.NoError(t, err)

	sig, err := Sign(pair.Priv, []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, Verify(pair.Pub, []byte("payload"), sig))
	assert.Error(t, Verify(pair.Pub, []byte("tampered"), sig))
}

func TestUploadRequestShape(t *testing.T) {
	bundle, err := GenerateBundle("carol", 4)
	require.NoError(t, err)

	req, err := bundle.UploadRequest()
	require.NoError(t, err)

	assert.Equal(t, "carol", req.UserID)
	assert.NotEmpty(t, req.IdentityKey)
	assert.NotEmpty(t, req.SignedPreKey)
	require.Len(t, req.OneTimePreKeys, 4)

	seen := make(map[uint32]bool)
	for _, opk := range req.OneTimePreKeys {
		assert.False(t, seen[opk.ID], "duplicate one-time key id %d", opk.ID)
		seen[opk.ID] = true
		assert.NotEmpty(t, opk.PublicKey)
	}
}

package keygen

import (
	"encoding/base64"
	"encoding/json"

	"whisper-relay/common"
)

// Bundle holds the full key material generated for one user. Only the
// public halves leave the process; the private halves stay with the owner.
type Bundle struct {
	UserID       string
	Identity     *Pair
	SignedPreKey *Pair
	PreKeySig    []byte
	OneTime      []*Pair
}

// signedPreKeyWire is the public signed-prekey encoding uploaded to the
// relay, which treats it as an opaque blob.
type signedPreKeyWire struct {
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
}

// GenerateBundle creates an identity key, a signed prekey and n one-time
// prekeys for userID. The signed prekey is signed with the identity key.
func GenerateBundle(userID string, n int) (*Bundle, error) {
	identity, err := NewPair()
	if err != nil {
		return nil, err
	}
	signedPreKey, err := NewPair()
	if err != nil {
		return nil, err
	}
	sig, err := Sign(identity.Priv, signedPreKey.Pub)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		UserID:       userID,
		Identity:     identity,
		SignedPreKey: signedPreKey,
		PreKeySig:    sig,
	}
	for i := 0; i < n; i++ {
		pair, err := NewPair()
		if err != nil {
			return nil, err
		}
		bundle.OneTime = append(bundle.OneTime, pair)
	}
	return bundle, nil
}

// UploadRequest renders the public view of the bundle in the relay's wire
// format. One-time key ids start at 1 and follow generation order.
func (b *Bundle) UploadRequest() (*common.UploadKeysRequest, error) {
	signedPreKey, err := json.Marshal(signedPreKeyWire{
		PublicKey: base64.StdEncoding.EncodeToString(b.SignedPreKey.Pub),
		Signature: base64.StdEncoding.EncodeToString(b.PreKeySig),
	})
	if err != nil {
		return nil, err
	}

	req := &common.UploadKeysRequest{
		UserID:         b.UserID,
		IdentityKey:    rawBase64(b.Identity.Pub),
		SignedPreKey:   signedPreKey,
		OneTimePreKeys: make([]common.OneTimePreKey, 0, len(b.OneTime)),
	}
	for i, pair := range b.OneTime {
		req.OneTimePreKeys = append(req.OneTimePreKeys, common.OneTimePreKey{
			ID:        uint32(i + 1),
			PublicKey: rawBase64(pair.Pub),
		})
	}
	return req, nil
}

func rawBase64(b []byte) json.RawMessage {
	raw, _ := json.Marshal(base64.StdEncoding.EncodeToString(b))
	return raw
}

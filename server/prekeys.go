package server

import (
	"encoding/json"
	"errors"
	"sync"

	"whisper-relay/common"
)

var (
	ErrNoBundle  = errors.New("no key bundle for user")
	ErrExhausted = errors.New("one-time prekeys exhausted")
)

type keyBundle struct {
	identityKey  json.RawMessage
	signedPreKey json.RawMessage
	oneTimeKeys  []common.OneTimePreKey
}

// preKeyStore keeps one prekey bundle per user. Uploads replace the bundle
// wholesale; the one-time pool only shrinks between uploads.
type preKeyStore struct {
	mu      sync.Mutex
	bundles map[string]*keyBundle
}

func newPreKeyStore() *preKeyStore {
	return &preKeyStore{bundles: make(map[string]*keyBundle)}
}

func (s *preKeyStore) upload(userID string, req *common.UploadKeysRequest) {
	s.mu.Lock()
	s.bundles[userID] = &keyBundle{
		identityKey:  req.IdentityKey,
		signedPreKey: req.SignedPreKey,
		oneTimeKeys:  append([]common.OneTimePreKey(nil), req.OneTimePreKeys...),
	}
	s.mu.Unlock()
}

// fetchAndConsumeOne pops the first available one-time key and returns it
// with the durable halves of the bundle. The pop and the store-back happen
// under one lock so no key id is ever issued twice per bundle generation.
func (s *preKeyStore) fetchAndConsumeOne(userID string) (*common.FetchKeysResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle, ok := s.bundles[userID]
	if !ok {
		return nil, ErrNoBundle
	}
	if len(bundle.oneTimeKeys) == 0 {
		return nil, ErrExhausted
	}

	opk := bundle.oneTimeKeys[0]
	bundle.oneTimeKeys = bundle.oneTimeKeys[1:]

	return &common.FetchKeysResponse{
		IdentityKey:  bundle.identityKey,
		SignedPreKey: bundle.signedPreKey,
		OneTimeKey:   opk,
	}, nil
}

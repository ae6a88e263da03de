package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-relay/client"
	"whisper-relay/common"
	"whisper-relay/configs"
)

func TestSendMissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  common.SendRequest
	}{
		{
			name: "missing to",
			req:  common.SendRequest{From: "bob", WireMessage: json.RawMessage(`"x"`)},
		},
		{
			name: "missing from",
			req:  common.SendRequest{To: "alice", WireMessage: json.RawMessage(`"x"`)},
		},
		{
			name: "missing wireMessage",
			req:  common.SendRequest{To: "alice", From: "bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ts := newTestServer(t)

			resp := postJSON(t, ts.URL+configs.SendPath, &tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			// No mailbox mutation on a rejected request.
			assert.Empty(t, s.mailboxes.drainAll("alice"))
			assert.Empty(t, s.mailboxes.drainAll("bob"))
		})
	}
}

func TestSendToOfflineUserEnqueues(t *testing.T) {
	s, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+configs.SendPath, &common.SendRequest{
		To: "alice", From: "bob", WireMessage: json.RawMessage(`"X"`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status common.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Success)

	queued := s.mailboxes.drainAll("alice")
	require.Len(t, queued, 1)
	assert.Equal(t, "bob", queued[0].From)
	assert.JSONEq(t, `"X"`, string(queued[0].WireMessage))
}

func TestSendToLiveUserDeliversImmediately(t *testing.T) {
	s, ts := newTestServer(t)

	conn := dialWS(t, ts)
	register(t, s, conn, "alice")

	resp := postJSON(t, ts.URL+configs.SendPath, &common.SendRequest{
		To: "alice", From: "bob", WireMessage: json.RawMessage(`"direct"`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := readEnvelope(t, conn)
	assert.Equal(t, common.MsgTypeNewMessage, env.Type)
	assert.Equal(t, "bob", env.From)
	assert.JSONEq(t, `"direct"`, string(env.WireMessage))

	// Delivered live, never queued.
	assert.Empty(t, s.mailboxes.drainAll("alice"))
}

func TestUploadKeysMissingFields(t *testing.T) {
	valid := func() common.UploadKeysRequest {
		return common.UploadKeysRequest{
			UserID:         "bob",
			IdentityKey:    json.RawMessage(`"ik"`),
			SignedPreKey:   json.RawMessage(`"spk"`),
			OneTimePreKeys: []common.OneTimePreKey{opk(1, "A")},
		}
	}

	tests := []struct {
		name   string
		mutate func(*common.UploadKeysRequest)
	}{
		{"missing userId", func(r *common.UploadKeysRequest) { r.UserID = "" }},
		{"missing identityKey", func(r *common.UploadKeysRequest) { r.IdentityKey = nil }},
		{"missing signedPreKey", func(r *common.UploadKeysRequest) { r.SignedPreKey = nil }},
		{"missing oneTimePreKeys", func(r *common.UploadKeysRequest) { r.OneTimePreKeys = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts := newTestServer(t)

			req := valid()
			tt.mutate(&req)
			resp := postJSON(t, ts.URL+configs.UploadKeysPath, &req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestFetchKeysLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	relay := client.New(ts.URL)

	// Never-registered user: not found, not exhausted.
	_, err := relay.FetchKeys("bob")
	require.ErrorIs(t, err, client.ErrNoBundle)

	require.NoError(t, relay.UploadKeys(&common.UploadKeysRequest{
		UserID:       "bob",
		IdentityKey:  json.RawMessage(`"ik"`),
		SignedPreKey: json.RawMessage(`"spk"`),
		OneTimePreKeys: []common.OneTimePreKey{
			{ID: 1, PublicKey: json.RawMessage(`"A"`)},
			{ID: 2, PublicKey: json.RawMessage(`"B"`)},
		},
	}))

	seen := make(map[uint32]bool)
	for i := 0; i < 2; i++ {
		bundle, err := relay.FetchKeys("bob")
		require.NoError(t, err)
		assert.JSONEq(t, `"ik"`, string(bundle.IdentityKey))
		assert.JSONEq(t, `"spk"`, string(bundle.SignedPreKey))
		assert.False(t, seen[bundle.OneTimeKey.ID], "one-time key %d issued twice", bundle.OneTimeKey.ID)
		seen[bundle.OneTimeKey.ID] = true
	}

	_, err = relay.FetchKeys("bob")
	assert.ErrorIs(t, err, client.ErrExhausted)
}

func TestFetchKeysStatusCodes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/keys/nobody")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	postJSON(t, ts.URL+configs.UploadKeysPath, &common.UploadKeysRequest{
		UserID:         "bob",
		IdentityKey:    json.RawMessage(`"ik"`),
		SignedPreKey:   json.RawMessage(`"spk"`),
		OneTimePreKeys: []common.OneTimePreKey{},
	})

	resp, err = http.Get(ts.URL + "/keys/bob")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

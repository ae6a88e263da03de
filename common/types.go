package common

import "encoding/json"

// Message types carried in the Envelope "type" field.
const (
	MsgTypeRegister       = "register"
	MsgTypeSignal         = "signal"
	MsgTypeOfflineMessage = "offline-message"
	MsgTypeNewMessage     = "new-message"
)

// Envelope is the JSON frame exchanged over a relay channel. Clients send
// "register" and "signal" frames; the server pushes "signal",
// "offline-message" and "new-message" frames. Signal and WireMessage stay
// opaque to the relay.
type Envelope struct {
	Type        string          `json:"type"`
	UserID      string          `json:"userId,omitempty"`
	To          string          `json:"to,omitempty"`
	From        string          `json:"from,omitempty"`
	Signal      json.RawMessage `json:"signal,omitempty"`
	WireMessage json.RawMessage `json:"wireMessage,omitempty"`
}

// MailboxEntry is one undelivered message held for an offline user.
type MailboxEntry struct {
	From        string          `json:"from"`
	WireMessage json.RawMessage `json:"wireMessage"`
}

// OneTimePreKey is a single-use public key with its bundle-unique id.
type OneTimePreKey struct {
	ID        uint32          `json:"id"`
	PublicKey json.RawMessage `json:"publicKey"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	To          string          `json:"to"`
	From        string          `json:"from"`
	WireMessage json.RawMessage `json:"wireMessage"`
}

// UploadKeysRequest is the body of POST /keys/upload.
type UploadKeysRequest struct {
	UserID         string          `json:"userId"`
	IdentityKey    json.RawMessage `json:"identityKey"`
	SignedPreKey   json.RawMessage `json:"signedPreKey"`
	OneTimePreKeys []OneTimePreKey `json:"oneTimePreKeys"`
}

// FetchKeysResponse is the body of a successful GET /keys/{userId}.
type FetchKeysResponse struct {
	IdentityKey  json.RawMessage `json:"identityKey"`
	SignedPreKey json.RawMessage `json:"signedPreKey"`
	OneTimeKey   OneTimePreKey   `json:"oneTimeKey"`
}

// StatusResponse acknowledges a request on the HTTP surface.
type StatusResponse struct {
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"whisper-relay/common"
)

// present reports whether an opaque JSON field was supplied.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("Error encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, common.StatusResponse{Error: msg})
}

// HandleSend accepts an asynchronous message for a user: delivered on the
// spot when the recipient has a live channel, queued in their mailbox
// otherwise. The caller gets a 200 either way; receipt by the recipient is
// never acknowledged.
func (s *Server) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req common.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Errorf("Error decoding /send request: %v", err)
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.To == "" || req.From == "" || !present(req.WireMessage) {
		s.writeError(w, http.StatusBadRequest, `missing "to", "from" or "wireMessage"`)
		return
	}

	// A register may be draining the recipient's mailbox while we check
	// presence; a message enqueued in that window is delivered on the next
	// registration.
	if conn, ok := s.presence.lookup(req.To); ok && conn.open() {
		env := common.Envelope{
			Type:        common.MsgTypeNewMessage,
			From:        req.From,
			WireMessage: req.WireMessage,
		}
		if err := conn.writeJSON(&env); err != nil {
			s.logger.Errorf("Error delivering message from %s to %s: %v", req.From, req.To, err)
		}
	} else {
		s.mailboxes.enqueue(req.To, common.MailboxEntry{From: req.From, WireMessage: req.WireMessage})
		s.logger.Infof("Queued message from %s for offline user %s", req.From, req.To)
	}

	s.writeJSON(w, http.StatusOK, common.StatusResponse{Success: true})
}

// HandleUploadKeys replaces the user's prekey bundle wholesale. Key material
// is stored as received; the relay never validates it beyond presence of the
// required fields.
func (s *Server) HandleUploadKeys(w http.ResponseWriter, r *http.Request) {
	var req common.UploadKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Errorf("Error decoding /keys/upload request: %v", err)
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" || !present(req.IdentityKey) || !present(req.SignedPreKey) || req.OneTimePreKeys == nil {
		s.writeError(w, http.StatusBadRequest, "incomplete prekey bundle")
		return
	}

	s.preKeys.upload(req.UserID, &req)
	s.logger.Infof("Stored prekey bundle for %s with %d one-time keys", req.UserID, len(req.OneTimePreKeys))
	s.writeJSON(w, http.StatusOK, common.StatusResponse{Success: true})
}

// HandleGetKeys hands out the user's bundle with one one-time key consumed.
func (s *Server) HandleGetKeys(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	resp, err := s.preKeys.fetchAndConsumeOne(userID)
	switch {
	case errors.Is(err, ErrNoBundle):
		s.logger.Warnf("No prekey bundle for user %s", userID)
		s.writeError(w, http.StatusNotFound, "no key material for this user")
		return
	case errors.Is(err, ErrExhausted):
		s.logger.Warnf("One-time prekeys depleted for user %s", userID)
		s.writeError(w, http.StatusServiceUnavailable, "one-time keys depleted")
		return
	}

	s.logger.Infof("Issued one-time key %d for %s", resp.OneTimeKey.ID, userID)
	s.writeJSON(w, http.StatusOK, resp)
}

package server

import (
	"encoding/json"
	"net/http"

	"whisper-relay/common"
)

// HandleWS upgrades the request to a websocket relay channel and runs its
// read loop. A connection starts unbound; a register frame binds it to a
// userId and flushes that user's mailbox. Errors in individual frames are
// contained, only a transport error ends the loop.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorf("Error upgrading to WebSocket: %v", err)
		return
	}

	conn := newWSConn(ws)
	userID := ""
	defer func() {
		conn.close()
		if userID != "" {
			s.presence.unregister(userID, conn)
			s.logger.Infof("User %s disconnected", userID)
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if userID != "" {
				s.logger.Errorf("Error reading message from user %s: %v", userID, err)
			}
			return
		}

		var env common.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.logger.Errorf("Invalid message format from user %s: %v", userID, err)
			continue
		}

		switch env.Type {
		case common.MsgTypeRegister:
			if env.UserID == "" {
				s.logger.Warn("Register frame without userId, ignoring")
				continue
			}
			userID = env.UserID
			s.handleRegister(userID, conn)
		case common.MsgTypeSignal:
			s.handleSignal(userID, &env)
		default:
			s.logger.Warnf("Unknown message type %q from user %s", env.Type, userID)
		}
	}
}

// handleRegister binds the channel to userID, then drains the mailbox and
// flushes it over the channel in FIFO order. Re-registration re-binds and
// re-drains. A message submitted via /send between the drain and a
// concurrent presence update rides the mailbox until the next registration;
// the window is accepted rather than closed with a handshake.
func (s *Server) handleRegister(userID string, conn *wsConn) {
	s.presence.register(userID, conn)
	s.logger.Infof("User %s registered", userID)

	pending := s.mailboxes.drainAll(userID)
	if len(pending) == 0 {
		return
	}

	s.logger.Infof("Flushing %d pending messages to %s", len(pending), userID)
	for _, entry := range pending {
		env := common.Envelope{
			Type:        common.MsgTypeOfflineMessage,
			From:        entry.From,
			WireMessage: entry.WireMessage,
		}
		if err := conn.writeJSON(&env); err != nil {
			s.logger.Errorf("Error flushing pending message to %s: %v", userID, err)
			return
		}
	}
}

// handleSignal forwards a signaling payload to a live recipient. Signals
// have no mailbox fallback; an unreachable recipient is a silent drop as
// far as the sender is concerned.
func (s *Server) handleSignal(userID string, env *common.Envelope) {
	recipient, ok := s.presence.lookup(env.To)
	if !ok || !recipient.open() {
		s.logger.Warnf("Recipient %s not connected, dropping signal from %s", env.To, userID)
		return
	}

	out := common.Envelope{
		Type:   common.MsgTypeSignal,
		From:   userID,
		Signal: env.Signal,
	}
	if err := recipient.writeJSON(&out); err != nil {
		s.logger.Errorf("Error forwarding signal from %s to %s: %v", userID, env.To, err)
	}
}

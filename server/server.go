package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"whisper-relay/configs"
)

// Server relays signaling payloads between connected users, queues messages
// for offline ones and hands out prekey bundles. All state is in memory and
// dies with the process.
type Server struct {
	ctx       context.Context
	cancelCtx context.CancelFunc

	presence  *presenceRegistry
	mailboxes *mailbox
	preKeys   *preKeyStore
	logger    *logrus.Logger

	// WebSocket upgrader settings
	upgrader *websocket.Upgrader
}

func NewServer(ctx context.Context, logger *logrus.Logger) *Server {
	ctx, cancelCtx := context.WithCancel(ctx)
	return &Server{
		ctx:       ctx,
		cancelCtx: cancelCtx,
		presence:  newPresenceRegistry(),
		mailboxes: newMailbox(),
		preKeys:   newPreKeyStore(),
		logger:    logger,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts the websocket endpoint and the HTTP surface.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(configs.WebSocketPath, s.HandleWS)
	r.HandleFunc(configs.SendPath, s.HandleSend).Methods(http.MethodPost)
	r.HandleFunc(configs.UploadKeysPath, s.HandleUploadKeys).Methods(http.MethodPost)
	r.HandleFunc(configs.FetchKeysPath, s.HandleGetKeys).Methods(http.MethodGet)
	return r
}

func (s *Server) Close() {
	s.cancelCtx()
	s.presence.closeAll()
}

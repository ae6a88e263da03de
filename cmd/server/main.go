package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"whisper-relay/configs"
	"whisper-relay/server"
)

var (
	logger = logrus.New()
)

// Main function to start the relay server
func main() {
	configs.Load()

	s := server.NewServer(context.Background(), logger)
	defer s.Close()

	addr := configs.ListenAddr()
	logger.Infof("Relay server listening on %s", addr)
	if err := http.ListenAndServe(addr, s.Routes()); err != nil {
		logger.Fatalf("Error starting server: %v", err)
	}
}

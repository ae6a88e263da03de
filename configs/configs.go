package configs

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	DefaultPort = "8080"

	WebSocketPath  = "/ws"
	SendPath       = "/send"
	UploadKeysPath = "/keys/upload"
	FetchKeysPath  = "/keys/{userId}"
)

// Load reads a .env file if one exists. A missing file is not an error;
// resolution falls through to the process environment.
func Load() {
	_ = godotenv.Load()
}

// ListenAddr resolves the listening address from the PORT environment
// variable, falling back to DefaultPort.
func ListenAddr() string {
	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}
	return ":" + port
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"whisper-relay/client"
	"whisper-relay/crypto/keygen"
)

var (
	logger = logrus.New()
)

func main() {
	userID := flag.String("user", "", "user identifier to generate keys for")
	numOPKs := flag.Int("opks", 10, "number of one-time prekeys")
	upload := flag.String("upload", "", "relay base URL to upload the public bundle to")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(1)
	}

	bundle, err := keygen.GenerateBundle(*userID, *numOPKs)
	if err != nil {
		logger.Fatalf("Failed to generate key bundle: %v", err)
	}

	// Private halves go to stdout only; the relay never sees them.
	fmt.Printf("IDENTITY PRIVATE: %x\n", bundle.Identity.Priv)
	fmt.Printf("SIGNED PREKEY PRIVATE: %x\n", bundle.SignedPreKey.Priv)
	for i, pair := range bundle.OneTime {
		fmt.Printf("ONE-TIME %d PRIVATE: %x\n", i+1, pair.Priv)
	}

	req, err := bundle.UploadRequest()
	if err != nil {
		logger.Fatalf("Failed to encode public bundle: %v", err)
	}
	public, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to encode public bundle: %v", err)
	}
	fmt.Println(string(public))

	if *upload != "" {
		if err := client.New(*upload).UploadKeys(req); err != nil {
			logger.Fatalf("Failed to upload bundle: %v", err)
		}
		logger.Infof("Uploaded bundle for %s with %d one-time prekeys", *userID, *numOPKs)
	}
}

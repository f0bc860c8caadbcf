package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	fb "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewApp builds the shared Firebase app. It first attempts to use
// credentials from the FIREBASE_SERVICE_ACCOUNT_JSON environment variable
// (Base64 encoded) and falls back to a key file named by
// FIREBASE_CREDENTIALS_FILE. With neither set it returns (nil, nil):
// remote sync, push and Google sign-in then run disabled.
func NewApp(ctx context.Context) (*fb.App, error) {
	var opt option.ClientOption

	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable")
	} else if file := os.Getenv("FIREBASE_CREDENTIALS_FILE"); file != "" {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return nil, fmt.Errorf("firebase credentials file not found: %s", file)
		}
		opt = option.WithCredentialsFile(file)
		log.Printf("Firebase: initializing from local file: %s", file)
	} else {
		return nil, nil
	}

	app, err := fb.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}

package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase builds the Admin SDK app used for push notifications.
// It returns nil, nil when Firebase is disabled.
func InitFirebase(ctx context.Context, cfg FirebaseConfig) (*firebase.App, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var opt option.ClientOption
	if cfg.CredentialsBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	} else {
		opt = option.WithCredentialsFile(cfg.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}

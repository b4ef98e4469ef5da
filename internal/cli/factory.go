package cli

import (
	"context"
	"fmt"

	"tasklist/internal/backend/googletasks"
	"tasklist/internal/backend/rest"
	"tasklist/internal/config"
	"tasklist/internal/service"
)

// AuthError reports missing or unusable credentials.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string {
	return e.Msg
}

// BackendFactory creates the Service selected by cfg.Settings.Backend.
func BackendFactory(ctx context.Context, cfg *config.Config) (service.Service, error) {
	switch cfg.Settings.Backend {
	case config.BackendREST:
		return rest.New(cfg)
	case config.BackendGoogle:
		// Check for required auth files and report user-friendly errors
		if !cfg.HasOAuthClient() {
			return nil, &AuthError{Msg: fmt.Sprintf("oauth_client.json not found in %s", cfg.Dir)}
		}
		if !cfg.HasToken() {
			return nil, &AuthError{Msg: "not logged in (run: tasklist login)"}
		}
		svc, err := googletasks.New(ctx, cfg)
		if err != nil {
			// Unreadable or malformed credential files.
			return nil, &AuthError{Msg: err.Error()}
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", cfg.Settings.Backend)
	}
}

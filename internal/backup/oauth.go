package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	"google.golang.org/api/drive/v3"
)

// RedirectURL is where the auth command's local server receives the code.
const RedirectURL = "http://localhost:8085/callback"

// GoogleOAuthConfig parses a Google OAuth client credentials file. The scope
// only grants access to files concertdb created.
func GoogleOAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	cfg.RedirectURL = RedirectURL
	return cfg, nil
}

// MicrosoftOAuthConfig returns the OAuth2 configuration for the Microsoft
// identity platform. An empty tenant means "common".
func MicrosoftOAuthConfig(clientID, tenantID string) *oauth2.Config {
	if tenantID == "" {
		tenantID = "common"
	}
	return &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    microsoft.AzureADEndpoint(tenantID),
		RedirectURL: RedirectURL,
		Scopes: []string{
			"https://graph.microsoft.com/Files.ReadWrite",
			"https://graph.microsoft.com/User.Read",
			"offline_access",
		},
	}
}

// TokenFromFile reads an OAuth token from a JSON file.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// savedTokenSource refreshes through cfg and writes every new token back to
// the token file.
type savedTokenSource struct {
	path string
	src  oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func newSavedTokenSource(ctx context.Context, cfg *oauth2.Config, tokenFile string) (*savedTokenSource, error) {
	tok, err := TokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token file (run 'concertdb auth' first): %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file has no usable token; delete %s and run 'concertdb auth' again", tokenFile)
	}
	return &savedTokenSource{
		path: tokenFile,
		src:  cfg.TokenSource(ctx, tok),
		last: tok.AccessToken,
	}, nil
}

func (s *savedTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("token expired and refresh failed (delete %s and run 'concertdb auth'): %w", s.path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			slog.Warn("persist refreshed token", "path", s.path, "err", err)
		}
	}
	return tok, nil
}

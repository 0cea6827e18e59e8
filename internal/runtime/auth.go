package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gc "github.com/joshsymonds/maildigest/internal/gmail"
)

// Connector performs (or resumes) the OAuth flow against the configured
// credential and token files and yields a ready Gmail client.
type Connector struct {
	CredentialsPath string
	TokenPath       string
	Log             *slog.Logger
}

// Connect builds an authenticated Gmail client. A persisted token is
// reused when present; otherwise the consent flow runs on the terminal
// and the resulting token is saved for subsequent runs.
func (c *Connector) Connect(ctx context.Context) (gc.Client, error) {
	b, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secret file %s: %w", c.CredentialsPath, err)
	}
	conf, err := google.ConfigFromJSON(b, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}

	tok, err := tokenFromFile(c.TokenPath)
	if err != nil {
		tok, err = tokenFromWeb(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(c.TokenPath, tok); err != nil {
			return nil, err
		}
		c.Log.Info("saved oauth token", "path", c.TokenPath)
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewGoogleAPIClient(svc), nil
}

// tokenFromWeb walks the user through the consent flow and exchanges the
// authorization code. Offline access is requested so a refresh token comes
// back with it.
func tokenFromWeb(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}
	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("save oauth token %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("encode oauth token: %w", err)
	}
	return nil
}

// DefaultLogger logs to stderr only.
func DefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// FileLogger tees log output to stderr and <dir>/app.log. It falls back
// to stderr alone when the log file cannot be opened.
func FileLogger(dir string) *slog.Logger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DefaultLogger()
	}
	f, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return DefaultLogger()
	}
	w := io.MultiWriter(os.Stderr, f)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScope grants read and write access to spreadsheet documents.
const DefaultScope = "https://www.googleapis.com/auth/spreadsheets"

// Options configures how an authorized HTTP client is produced.
type Options struct {
	// CredentialsFile is the application credentials JSON (installed-app or
	// web format). Required.
	CredentialsFile string

	// TokenFile is the file a previously granted user token is read from.
	TokenFile string

	// SaveToken persists a freshly exchanged token to TokenFile.
	SaveToken bool

	// Scopes defaults to [DefaultScope].
	Scopes []string

	// In and Out carry the interactive code exchange.
	// They default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	// Logger is optional and defaults to slog.Default().
	Logger *slog.Logger
}

// Client returns an HTTP client that attaches the user's credentials to every
// request. A token stored in Options.TokenFile is reused when present,
// otherwise the interactive authorization exchange runs over Options.In/Out:
// the authorization link is printed and the pasted one-time code is traded
// for a token.
//
// The returned client refreshes its access token transparently. A refreshed
// token is not written back to TokenFile, only the initial exchange persists.
func Client(ctx context.Context, opts Options) (*http.Client, error) {
	if opts.CredentialsFile == "" {
		return nil, fmt.Errorf("auth: credentials file must be set")
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{DefaultScope}
	}

	data, err := os.ReadFile(opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("auth: read credentials: %w", err)
	}
	config, err := google.ConfigFromJSON(data, opts.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("auth: parse credentials: %w", err)
	}

	token, err := LoadToken(opts.TokenFile)
	if err != nil {
		opts.Logger.Info("no stored token, starting interactive authorization")

		token, err = exchange(ctx, config, opts)
		if err != nil {
			return nil, err
		}
		if opts.SaveToken && opts.TokenFile != "" {
			if err := SaveToken(opts.TokenFile, token); err != nil {
				return nil, err
			}
			opts.Logger.Info("token saved", "file", opts.TokenFile)
		}
	}

	return config.Client(ctx, token), nil
}

// exchange runs the out-of-band authorization flow: print the link, read the
// pasted code, trade it for a token.
func exchange(ctx context.Context, config *oauth2.Config, opts Options) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(opts.Out, "Open the following link in your browser, then paste the authorization code:\n%v\n> ", authURL)

	scanner := bufio.NewScanner(opts.In)
	if !scanner.Scan() {
		return nil, fmt.Errorf("auth: no authorization code entered")
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return nil, fmt.Errorf("auth: no authorization code entered")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: code exchange failed: %w", err)
	}
	return token, nil
}

// LoadToken reads a stored user token.
func LoadToken(path string) (*oauth2.Token, error) {
	if path == "" {
		return nil, fmt.Errorf("auth: no token file configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("auth: decode token: %w", err)
	}
	return token, nil
}

// SaveToken writes a user token, readable only by the owner.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("auth: create token file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("auth: encode token: %w", err)
	}
	return nil
}

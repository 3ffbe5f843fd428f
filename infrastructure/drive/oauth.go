package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DefaultCallbackAddr is where the consent redirect is received
const DefaultCallbackAddr = "localhost:8085"

// OAuthConfig holds the configuration for OAuth 2.0 authentication.
// Personal accounts need this: service accounts have no storage quota of their own.
type OAuthConfig struct {
	CredentialsFile string    // Path to OAuth client credentials JSON
	TokenFile       string    // Path to store/load token
	CallbackAddr    string    // Local address for the redirect, DefaultCallbackAddr if empty
	Prompt          io.Writer // Where the consent URL is printed, os.Stdout if nil
}

// NewClientWithOAuth creates a new Google Drive client using OAuth 2.0
func NewClientWithOAuth(ctx context.Context, cfg OAuthConfig, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		svc, err := newOAuthDriveService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

func newOAuthDriveService(ctx context.Context, cfg OAuthConfig) (*GoogleDriveService, error) {
	b, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}

	token, err := getToken(ctx, config, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to get OAuth token: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// getToken returns the cached token, refreshing it if needed, or runs the
// consent flow when there is none
func getToken(ctx context.Context, config *oauth2.Config, cfg OAuthConfig) (*oauth2.Token, error) {
	if token, err := loadToken(cfg.TokenFile); err == nil {
		fresh, err := config.TokenSource(ctx, token).Token()
		if err == nil {
			if fresh.AccessToken != token.AccessToken {
				// A failed save only costs a refresh next time
				_ = saveToken(cfg.TokenFile, fresh)
			}
			return fresh, nil
		}
	}

	return getTokenFromWeb(ctx, config, cfg)
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

// saveToken writes the token readable by the owner only
func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(file, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// callbackHandler hands the authorization code from the redirect to codes
func callbackHandler(codes chan<- string, errs chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, "Authorization denied: "+msg, http.StatusBadRequest)
			errs <- fmt.Errorf("authorization denied: %s", msg)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No authorization code received", http.StatusBadRequest)
			errs <- errors.New("no code in callback")
			return
		}
		codes <- code
		fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>")
	})
	return mux
}

// getTokenFromWeb runs the installed-app consent flow via the browser
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, cfg OAuthConfig) (*oauth2.Token, error) {
	addr := cfg.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	prompt := cfg.Prompt
	if prompt == nil {
		prompt = os.Stdout
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("unable to listen for OAuth callback on %s: %w", addr, err)
	}
	config.RedirectURL = "http://" + ln.Addr().String() + "/callback"

	codes := make(chan string, 1)
	errs := make(chan error, 2)
	server := &http.Server{Handler: callbackHandler(codes, errs)}
	go func() {
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	defer server.Shutdown(context.WithoutCancel(ctx))

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(prompt, "\nOpen this URL to authorize Google Drive uploads:\n\n%s\n\n", authURL)
	openBrowser(authURL)

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code: %w", err)
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		fmt.Fprintf(prompt, "Warning: couldn't save token: %v\n", err)
	}
	return token, nil
}

// openBrowser opens a URL in the default browser, best effort
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.Command("xdg-open", url)
		} else if _, err := exec.LookPath("wslview"); err == nil {
			cmd = exec.Command("wslview", url)
		}
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}

	if cmd != nil {
		_ = cmd.Start()
	}
}

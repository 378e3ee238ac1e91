// Package auth obtains an authorized HTTP client for the Analytics Reporting
// API from stored client secrets and a cached, refreshable token.
package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/BartekS5/gaexport/pkg/logger"
)

// AnalyticsReadonlyScope is the only scope requested.
const AnalyticsReadonlyScope = "https://www.googleapis.com/auth/analytics.readonly"

// TokenStore persists an OAuth token as JSON on disk.
type TokenStore struct {
	Path string
}

// Load returns the cached token, or (nil, nil) when none exists yet.
func (s TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token '%s': %w", s.Path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token '%s': %w", s.Path, err)
	}
	return &tok, nil
}

func (s TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token '%s': %w", s.Path, err)
	}
	return nil
}

// Authorizer runs the installed-application flow when no usable token is cached.
type Authorizer struct {
	Config *oauth2.Config
	Store  TokenStore

	// In and Out are used for the consent prompt.
	In  io.Reader
	Out io.Writer
}

// NewAuthorizer reads a client secrets file downloaded from the Google API console.
func NewAuthorizer(secretsPath, tokenPath string) (*Authorizer, error) {
	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets '%s': %w", secretsPath, err)
	}
	cfg, err := google.ConfigFromJSON(data, AnalyticsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets '%s': %w", secretsPath, err)
	}
	return &Authorizer{
		Config: cfg,
		Store:  TokenStore{Path: tokenPath},
		In:     os.Stdin,
		Out:    os.Stderr,
	}, nil
}

// Client returns an HTTP client that refreshes the token as needed and
// writes refreshed tokens back to the store.
func (a *Authorizer) Client(ctx context.Context) (*http.Client, error) {
	tok, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	if tok == nil || (tok.RefreshToken == "" && !tok.Valid()) {
		tok, err = a.consent(ctx)
		if err != nil {
			return nil, err
		}
		if err := a.Store.Save(tok); err != nil {
			return nil, err
		}
	}

	src := &persistingSource{
		base:  a.Config.TokenSource(ctx, tok),
		store: a.Store,
		last:  tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// consent runs the authorization step. Installed-app secrets carry a
// loopback redirect URI, so a one-shot local listener receives the code.
// Other redirect URIs fall back to pasting the code on In.
func (a *Authorizer) consent(ctx context.Context) (*oauth2.Token, error) {
	if isLoopback(a.Config.RedirectURL) {
		tok, err := a.loopbackConsent(ctx)
		if !errors.Is(err, errNoListener) {
			return tok, err
		}
		logger.Warnf("Could not start local redirect listener, falling back to manual code entry: %v", err)
	}
	return a.manualConsent(ctx)
}

var errNoListener = errors.New("loopback listener unavailable")

type callback struct {
	code string
	err  error
}

func (a *Authorizer) loopbackConsent(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoListener, err)
	}

	cfg := *a.Config
	cfg.RedirectURL = "http://" + ln.Addr().String() + "/"
	state := uuid.NewString()

	results := make(chan callback, 1)
	srv := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			var res callback
			switch {
			case q.Get("error") != "":
				res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
			case q.Get("state") != state:
				res.err = errors.New("authorization redirect has a mismatched state")
			case q.Get("code") == "":
				res.err = errors.New("authorization redirect has no code")
			default:
				res.code = q.Get("code")
			}
			if res.err != nil {
				http.Error(w, res.err.Error(), http.StatusBadRequest)
			} else {
				fmt.Fprintln(w, "Authorization received. You can close this window.")
			}
			select {
			case results <- res:
			default:
			}
		}),
	}
	go srv.Serve(ln)
	defer srv.Close()

	fmt.Fprintf(a.Out, "Open the following link in your browser to authorize access:\n%s\n",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	var res callback
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	logger.Infof("Stored new OAuth token in %s", a.Store.Path)
	return tok, nil
}

func (a *Authorizer) manualConsent(ctx context.Context) (*oauth2.Token, error) {
	authURL := a.Config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Fprintf(a.Out, "Open the following link in your browser and approve access:\n%s\n"+
		"If the browser then fails to load a localhost page, copy the code parameter from its address bar.\nCode: ", authURL)

	sc := bufio.NewScanner(a.In)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read authorization code: %w", err)
		}
		return nil, errors.New("read authorization code: no input")
	}
	code := strings.TrimSpace(sc.Text())
	if code == "" {
		return nil, errors.New("empty authorization code")
	}

	tok, err := a.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	logger.Infof("Stored new OAuth token in %s", a.Store.Path)
	return tok, nil
}

func isLoopback(redirect string) bool {
	u, err := url.Parse(redirect)
	if err != nil || u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// persistingSource saves every newly minted access token.
type persistingSource struct {
	base  oauth2.TokenSource
	store TokenStore

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.Save(tok); err != nil {
			logger.Warnf("Could not persist refreshed token: %v", err)
		}
	}
	return tok, nil
}

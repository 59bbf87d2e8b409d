package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// TokenSource supplies bearer credentials for outgoing requests.
type TokenSource interface {
	// Token returns a credential, fetching one if none is cached.
	Token(ctx context.Context) (string, error)
	// Invalidate discards the cached credential so the next Token call
	// fetches a fresh one.
	Invalidate()
}

// StaticToken is a TokenSource that always yields the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }
func (t StaticToken) Invalidate()                           {}

// ClientCredentials exchanges a client id and secret for a bearer token via
// the OAuth2 client-credentials grant. Tokens are cached until shortly
// before expiry and re-fetched transparently.
type ClientCredentials struct {
	// TokenURL is the token-exchange endpoint.
	TokenURL string
	// ClientID and ClientSecret authenticate this client.
	ClientID     string
	ClientSecret string
	// HTTPClient performs the exchange. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
	// Leeway refreshes tokens this long before their reported expiry.
	// Defaults to 30s.
	Leeway time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns the cached token, or performs a token exchange if there is
// none or it is about to expire.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	leeway := c.Leeway
	if leeway <= 0 {
		leeway = 30 * time.Second
	}
	if c.token != "" && (c.expiry.IsZero() || time.Now().Add(leeway).Before(c.expiry)) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("transport: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &ConnectionError{Err: fmt.Errorf("token exchange: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode, Reason: "token exchange failed"}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("transport: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("transport: token response missing access_token")
	}

	c.token = tok.AccessToken
	if tok.ExpiresIn > 0 {
		c.expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	} else {
		c.expiry = time.Time{}
	}
	return c.token, nil
}

// Invalidate discards the cached token.
func (c *ClientCredentials) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiry = time.Time{}
	c.mu.Unlock()
}

// WithAuth attaches a bearer credential to every outgoing request. If the
// service rejects the credential with a 401, the cached token is discarded,
// a fresh one is fetched, and the original request is replayed exactly once.
func WithAuth(source TokenSource) Middleware {
	return func(next Caller) Caller {
		return func(ctx context.Context, req Request) (*Response, error) {
			// A reader body would be consumed before a replay.
			req, err := bufferBody(req)
			if err != nil {
				return nil, err
			}
			resp, err := callWithToken(ctx, next, req, source)
			if err == nil || ErrorStatus(err) != http.StatusUnauthorized {
				return resp, err
			}

			source.Invalidate()
			return callWithToken(ctx, next, req, source)
		}
	}
}

func callWithToken(ctx context.Context, next Caller, req Request, source TokenSource) (*Response, error) {
	token, err := source.Token(ctx)
	if err != nil {
		return nil, err
	}

	// Copy headers so a replay does not see a mutated request.
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	headers["Authorization"] = "Bearer " + token
	req.Headers = headers

	return next(ctx, req)
}

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// tokenServer issues sequential tokens "token-1", "token-2", ...
func tokenServer(t *testing.T, expiresIn int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var issued atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.Form.Get("grant_type"); got != "client_credentials" {
			t.Errorf("expected client_credentials grant, got %q", got)
		}
		if r.Form.Get("client_id") != "id" || r.Form.Get("client_secret") != "secret" {
			t.Errorf("credentials not forwarded")
		}
		n := issued.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"expires_in":   expiresIn,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &issued
}

func TestClientCredentials_FetchesAndCaches(t *testing.T) {
	srv, issued := tokenServer(t, 3600)
	cc := &ClientCredentials{TokenURL: srv.URL, ClientID: "id", ClientSecret: "secret"}

	tok1, err := cc.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok2, err := cc.Token(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok1 != tok2 {
		t.Errorf("expected cached token, got %q then %q", tok1, tok2)
	}
	if issued.Load() != 1 {
		t.Errorf("expected a single exchange, got %d", issued.Load())
	}
}

func TestClientCredentials_RefreshesExpiredToken(t *testing.T) {
	// expires_in of 1s is inside the default 30s leeway, so the second call
	// must re-fetch.
	srv, issued := tokenServer(t, 1)
	cc := &ClientCredentials{TokenURL: srv.URL, ClientID: "id", ClientSecret: "secret"}

	if _, err := cc.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := cc.Token(context.Background()); err != nil {
		t.Fatal(err)
	}
	if issued.Load() != 2 {
		t.Errorf("expected expired token to be re-fetched, got %d exchanges", issued.Load())
	}
}

func TestClientCredentials_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(403)
	}))
	defer srv.Close()

	cc := &ClientCredentials{TokenURL: srv.URL, ClientID: "id", ClientSecret: "secret"}
	if _, err := cc.Token(context.Background()); err == nil {
		t.Error("expected exchange failure to surface")
	}
}

func TestWithAuth_AttachesBearerToken(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("Authorization"))
		w.WriteHeader(200)
	}))
	defer srv.Close()

	call := Chain(WithAuth(StaticToken("tok")), StatusMapping())(HTTPTransport(nil, time.Second))
	if _, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL}); err != nil {
		t.Fatal(err)
	}
	if got.Load() != "Bearer tok" {
		t.Errorf("expected Bearer tok, got %v", got.Load())
	}
}

func TestWithAuth_RejectedCredentialReplayedOnce(t *testing.T) {
	tokens, _ := tokenServer(t, 3600)
	cc := &ClientCredentials{TokenURL: tokens.URL, ClientID: "id", ClientSecret: "secret"}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The first credential is rejected as expired; any later one works.
		if calls.Add(1) == 1 {
			w.WriteHeader(401)
			return
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("replay must carry a credential")
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	call := Chain(WithAuth(cc), StatusMapping())(HTTPTransport(nil, time.Second))
	resp, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL})
	if err != nil {
		t.Fatalf("refresh and replay should hide the rejection: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Errorf("expected replayed response, got %q", resp.Body)
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly one replay, got %d calls", calls.Load())
	}
}

func TestWithAuth_SecondRejectionSurfaces(t *testing.T) {
	tokens, _ := tokenServer(t, 3600)
	cc := &ClientCredentials{TokenURL: tokens.URL, ClientID: "id", ClientSecret: "secret"}

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(401)
	}))
	defer srv.Close()

	call := Chain(WithAuth(cc), StatusMapping())(HTTPTransport(nil, time.Second))
	_, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL})
	if ErrorStatus(err) != 401 {
		t.Fatalf("expected the second 401 to surface, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly two calls (original + one replay), got %d", calls.Load())
	}
}

func TestWithAuth_ReplayResendsReaderBody(t *testing.T) {
	tokens, _ := tokenServer(t, 3600)
	cc := &ClientCredentials{TokenURL: tokens.URL, ClientID: "id", ClientSecret: "secret"}

	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(content))
		first := len(bodies) == 1
		mu.Unlock()
		if first {
			w.WriteHeader(401)
			return
		}
		w.WriteHeader(200)
	}))
	defer srv.Close()

	call := Chain(WithAuth(cc), StatusMapping())(HTTPTransport(nil, time.Second))
	_, err := call(context.Background(), Request{
		Method: http.MethodPost,
		Target: srv.URL,
		Body:   strings.NewReader("document content"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected original call plus one replay, got %d", len(bodies))
	}
	if bodies[1] != "document content" {
		t.Errorf("replay sent body %q, want %q", bodies[1], "document content")
	}
}

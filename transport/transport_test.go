package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransport_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	call := HTTPTransport(nil, time.Second)
	resp, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL + "/thing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 200 || !resp.IsSuccess() {
		t.Errorf("expected 200 success, got %d", resp.StatusCode)
	}
	if resp.ContentType() != "application/json" {
		t.Errorf("expected json content type, got %q", resp.ContentType())
	}
}

func TestHTTPTransport_QueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("expected page=2, got %q", got)
		}
		if got := r.Header.Get("X-Thing"); got != "yes" {
			t.Errorf("expected X-Thing=yes, got %q", got)
		}
		w.WriteHeader(204)
	}))
	defer srv.Close()

	call := HTTPTransport(nil, time.Second)
	resp, err := call(context.Background(), Request{
		Method:  http.MethodGet,
		Target:  srv.URL,
		Query:   map[string]string{"page": "2"},
		Headers: map[string]string{"X-Thing": "yes"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != 204 {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
}

func TestHTTPTransport_TimeoutProducesTimeoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	call := HTTPTransport(nil, 20*time.Millisecond)
	_, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL})
	if !IsTimeout(err) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if IsCancelled(err) {
		t.Error("a timeout must not read as cancellation")
	}

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatal("expected *TimeoutError")
	}
	if te.Method != http.MethodGet || te.Target != srv.URL {
		t.Errorf("timeout error should carry method and target, got %s %s", te.Method, te.Target)
	}
}

func TestHTTPTransport_CallerCancellationProducesCancelledError(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	call := HTTPTransport(nil, 10*time.Second)
	_, err := call(ctx, Request{Method: http.MethodGet, Target: srv.URL})
	if !IsCancelled(err) {
		t.Fatalf("expected CancelledError, got %v", err)
	}
	if IsTimeout(err) {
		t.Error("a cancellation must not read as timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("cancellation must satisfy errors.Is(err, context.Canceled)")
	}
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	call := HTTPTransport(nil, time.Second)
	_, err := call(context.Background(), Request{Method: http.MethodGet, Target: "http://127.0.0.1:1/nope"})
	if !IsConnection(err) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if !IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestStatusMapping_JSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(422)
		w.Write([]byte(`{"message":"document too large"}`))
	}))
	defer srv.Close()

	call := StatusMapping()(HTTPTransport(nil, time.Second))
	_, err := call(context.Background(), Request{Method: http.MethodPost, Target: srv.URL})

	var api *APIError
	if !errors.As(err, &api) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if api.Status != 422 || api.Message != "document too large" {
		t.Errorf("unexpected APIError: %+v", api)
	}
	if IsRetryable(err) {
		t.Error("a 422 must not be retryable")
	}
}

func TestStatusMapping_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(503)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	call := StatusMapping()(HTTPTransport(nil, time.Second))
	_, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL})

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != 503 || se.Reason != "Service Unavailable" {
		t.Errorf("unexpected StatusError: %+v", se)
	}
	if !IsRetryable(err) {
		t.Error("a 503 must be retryable")
	}
}

func TestStatusMapping_SuccessPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	call := StatusMapping()(HTTPTransport(nil, time.Second))
	resp, err := call(context.Background(), Request{Method: http.MethodGet, Target: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Body) != "payload" {
		t.Errorf("body altered by status mapping: %q", resp.Body)
	}
}

func TestChain_ComposesFirstOutermost(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Caller) Caller {
			return func(ctx context.Context, req Request) (*Response, error) {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}
	base := Caller(func(ctx context.Context, req Request) (*Response, error) {
		order = append(order, "base")
		return &Response{StatusCode: 200}, nil
	})

	_, err := Chain(mw("a"), mw("b"), mw("c"))(base)(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c", "base"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

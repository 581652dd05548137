package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/silanhu/easycli/internal/errors"
)

func sseServer(t *testing.T, events ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") == "" {
			t.Error("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("missing anthropic-version header")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
		}
	}))
}

func newTestClient(t *testing.T, url string) *Anthropic {
	t.Helper()
	c, err := NewAnthropic("test-key", url, "test-model")
	if err != nil {
		t.Fatalf("NewAnthropic: %v", err)
	}
	return c
}

func deltaEvent(text string) string {
	return fmt.Sprintf(`{"type":"content_block_delta","delta":{"type":"text_delta","text":%q}}`, text)
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropic("", "", "m"); !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("empty key should fail with ErrMissingAPIKey, got %v", err)
	}
}

func TestStreamDeliversChunksInOrder(t *testing.T) {
	srv := sseServer(t,
		`{"type":"message_start"}`,
		deltaEvent("Hello"),
		deltaEvent(", "),
		deltaEvent("world"),
		`{"type":"message_stop"}`,
	)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var got []string
	err := c.Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, func(text string) { got = append(got, text) })
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(got, "") != "Hello, world" {
		t.Errorf("chunks = %v, want in-order delivery", got)
	}
}

func TestStreamIgnoresUnknownEvents(t *testing.T) {
	srv := sseServer(t,
		`{"type":"message_start"}`,
		`{"type":"content_block_start"}`,
		deltaEvent("ok"),
		`{"type":"content_block_stop"}`,
		`{"type":"message_delta","usage":{"output_tokens":3}}`,
		`{"type":"message_stop"}`,
	)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var got string
	if err := c.Stream(context.Background(), Request{}, func(s string) { got += s }); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want only delta text", got)
	}
}

func TestStreamInBandError(t *testing.T) {
	srv := sseServer(t,
		deltaEvent("partial"),
		`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
	)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var got string
	err := c.Stream(context.Background(), Request{}, func(s string) { got += s })
	if !apierrors.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	var pe *apierrors.ProviderError
	errors.As(err, &pe)
	if pe.Code != "overloaded_error" {
		t.Errorf("code = %q, want overloaded_error", pe.Code)
	}
	if got != "partial" {
		t.Errorf("chunks before the error should still be delivered, got %q", got)
	}
}

func TestStreamHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Stream(context.Background(), Request{}, func(string) {})
	if !apierrors.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid x-api-key") {
		t.Errorf("error should carry the API message, got %v", err)
	}
}

func TestStreamTruncatedIsTransportError(t *testing.T) {
	srv := sseServer(t, deltaEvent("cut off mid"))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Stream(context.Background(), Request{}, func(string) {})
	if !apierrors.IsTransportError(err) {
		t.Errorf("stream without message_stop should be a TransportError, got %v", err)
	}
}

func TestStreamConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := newTestClient(t, srv.URL)
	err := c.Stream(context.Background(), Request{}, func(string) {})
	if !apierrors.IsTransportError(err) {
		t.Errorf("connection failure should be a TransportError, got %v", err)
	}
}

func TestStreamContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := sseServer(t, deltaEvent("x"), `{"type":"message_stop"}`)
	defer srv.Close()

	cancel()
	c := newTestClient(t, srv.URL)
	err := c.Stream(ctx, Request{}, func(string) {})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled stream should surface context.Canceled, got %v", err)
	}
}

func TestBuildRequestBodyDefaults(t *testing.T) {
	c := newTestClient(t, "http://unused")
	body, err := c.buildRequestBody(Request{
		System:   "be terse",
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	})
	if err != nil {
		t.Fatalf("buildRequestBody: %v", err)
	}
	s := string(body)
	for _, want := range []string{`"model":"test-model"`, `"stream":true`, `"system":"be terse"`, `"max_tokens":4096`} {
		if !strings.Contains(s, want) {
			t.Errorf("body missing %s:\n%s", want, s)
		}
	}
}

func TestBuildRequestBodyOverrides(t *testing.T) {
	c := newTestClient(t, "http://unused")
	body, err := c.buildRequestBody(Request{Model: "other-model", MaxTokens: 64})
	if err != nil {
		t.Fatalf("buildRequestBody: %v", err)
	}
	s := string(body)
	if !strings.Contains(s, `"model":"other-model"`) || !strings.Contains(s, `"max_tokens":64`) {
		t.Errorf("overrides not applied:\n%s", s)
	}
}

package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSendPostsMessage(t *testing.T) {
	ctx := context.Background()

	var receivedMethod, receivedPath, receivedBody, receivedContentType, receivedTitle, receivedTags string

	client := &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			receivedMethod = r.Method
			receivedPath = r.URL.Path
			receivedContentType = r.Header.Get("Content-Type")
			receivedTitle = r.Header.Get("Title")
			receivedTags = r.Header.Get("Tags")
			rawBody, err := io.ReadAll(r.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			receivedBody = string(rawBody)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader("ok")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	msg := Message{
		Title: "contribute smoke: 1 of 6 scenarios failed",
		Tags:  []string{"warning", "smoke"},
		Body:  "footer-section: 1 bad links found",
	}
	if err := Send(ctx, client, "http://example.com/notifications", msg); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if got, want := receivedMethod, http.MethodPost; got != want {
		t.Fatalf("method = %q; want %q", got, want)
	}
	if got, want := receivedPath, "/notifications"; got != want {
		t.Fatalf("path = %q; want %q", got, want)
	}
	if got, want := receivedContentType, "text/plain"; got != want {
		t.Fatalf("content-type = %q; want %q", got, want)
	}
	if got, want := receivedTitle, msg.Title; got != want {
		t.Fatalf("title = %q; want %q", got, want)
	}
	if got, want := receivedTags, "warning,smoke"; got != want {
		t.Fatalf("tags = %q; want %q", got, want)
	}
	if got, want := receivedBody, msg.Body; got != want {
		t.Fatalf("body = %q; want %q", got, want)
	}
}

func TestSendReturnsErrorForServerError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusInternalServerError,
				Body:       io.NopCloser(strings.NewReader("server failure")),
				Header:     make(http.Header),
			}, nil
		}),
	}

	err := Send(context.Background(), client, "http://example.com/notifications", Message{Body: "x"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "ntfy notification failed") {
		t.Fatalf("error = %q; want to contain %q", err, "ntfy notification failed")
	}
}

func TestSendDisallowsMissingEndpoint(t *testing.T) {
	if err := Send(context.Background(), http.DefaultClient, " ", Message{Body: "x"}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

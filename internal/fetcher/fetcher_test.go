package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcher_FetchSingleURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p class="comment">Great tacos.</p></body></html>`))
	}))
	defer server.Close()

	f := New(Config{Timeout: 5 * time.Second, UserAgent: "test-agent"})

	doc, err := f.Fetch(t.Context(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !strings.HasPrefix(doc.URL, server.URL) {
		t.Errorf("URL = %q, want prefix %q", doc.URL, server.URL)
	}
	if !strings.Contains(doc.Content, "Great tacos.") {
		t.Error("Content should contain the page body")
	}
	if doc.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", doc.StatusCode)
	}
	if !strings.HasPrefix(doc.ContentType, "text/html") {
		t.Errorf("ContentType = %q, want text/html", doc.ContentType)
	}
	if doc.FetchedAt.IsZero() {
		t.Error("FetchedAt should not be zero")
	}
}

func TestFetcher_DoesNotFollowLinks(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="/other">other</a></body></html>`))
	}))
	defer server.Close()

	f := New(Config{Timeout: 5 * time.Second})
	if _, err := f.Fetch(t.Context(), server.URL); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestFetcher_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"forbidden", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			f := New(Config{Timeout: 5 * time.Second})
			_, err := f.Fetch(t.Context(), server.URL)
			if err == nil {
				t.Fatal("Fetch() expected error")
			}

			var fetchErr *Error
			if !errors.As(err, &fetchErr) {
				t.Fatalf("error %T is not *fetcher.Error", err)
			}
			if fetchErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.status)
			}
			if fetchErr.URL != server.URL {
				t.Errorf("URL = %q, want %q", fetchErr.URL, server.URL)
			}
			if !errors.Is(err, ErrStatus) {
				t.Errorf("error should wrap ErrStatus: %v", err)
			}
		})
	}
}

func TestFetcher_SuccessStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"ok", http.StatusOK},
		{"created", http.StatusCreated},
		{"non-authoritative", http.StatusNonAuthoritativeInfo},
		{"partial content", http.StatusPartialContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(tt.status)
				w.Write([]byte(`<html><body><p class="comment">Lovely.</p></body></html>`))
			}))
			defer server.Close()

			f := New(Config{Timeout: 5 * time.Second})
			doc, err := f.Fetch(t.Context(), server.URL)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if doc.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", doc.StatusCode, tt.status)
			}
			if !strings.Contains(doc.Content, "Lovely.") {
				t.Errorf("Content = %q, want the page body", doc.Content)
			}
		})
	}
}

func TestFetcher_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := New(Config{Timeout: 2 * time.Second})
	_, err := f.Fetch(t.Context(), url)
	if err == nil {
		t.Fatal("Fetch() expected error for closed server")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error %T is not *fetcher.Error", err)
	}
	if fetchErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network failure", fetchErr.StatusCode)
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(Config{Timeout: 2 * time.Second})
	_, err := f.Fetch(ctx, server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestFetcher_CancelInFlight(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	f := New(Config{Timeout: 10 * time.Second})
	start := time.Now()
	_, err := f.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("Fetch() should fail when the context expires")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Fetch() took %v, want it aborted by the context", elapsed)
	}
}

func TestFetcher_SetsUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><body>Test</body></html>`))
	}))
	defer server.Close()

	f := New(Config{UserAgent: "sentiscore-test/1.0"})
	if _, err := f.Fetch(t.Context(), server.URL); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if receivedUA != "sentiscore-test/1.0" {
		t.Errorf("User-Agent = %q, want %q", receivedUA, "sentiscore-test/1.0")
	}
}

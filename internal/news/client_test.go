package news

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const listBody = `{"news": [
  {"id": 1, "title": "Old", "coin_ticker": "BTC", "published_at": "2026-10-15T09:00:00", "link": "https://example.com/1", "sentiment_score": 0.5},
  {"id": 2, "title": "Middle", "description": "d", "coin_ticker": "ETH", "published_at": "2026-10-15T10:00:00", "link": "https://example.com/2", "sentiment_score": -0.2},
  {"id": 3, "title": "New", "coin_ticker": "BTC", "published_at": "2026-10-15T11:00:00", "link": "https://example.com/3", "sentiment_score": 0.0}
]}`

func testOptions() Options {
	return Options{Timeout: 5 * time.Second, RefreshEvery: time.Millisecond}
}

func TestNewsReversesServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/news" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listBody))
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())
	items, err := c.News(context.Background())
	if err != nil {
		t.Fatalf("News failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != 3 || items[2].ID != 1 {
		t.Errorf("expected newest first, got ids %d,%d,%d", items[0].ID, items[1].ID, items[2].ID)
	}
	if items[1].Description != "d" {
		t.Errorf("description not decoded: %q", items[1].Description)
	}

	raw, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if raw[0].ID != 1 {
		t.Errorf("List should keep server order, got first id %d", raw[0].ID)
	}
}

func TestNewsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())
	_, err := c.News(context.Background())
	if err == nil {
		t.Fatal("expected error for 500")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Kind != KindStatus || apiErr.Status != 500 {
		t.Errorf("expected status kind 500, got %v %d", apiErr.Kind, apiErr.Status)
	}
}

func TestNewsDecodeError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"news": [`},
		{"missing field", `{"items": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(server.URL, testOptions())
			_, err := c.News(context.Background())
			if KindOf(err) != KindDecode {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	}
}

func TestNewsEmptyListIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news": []}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())
	items, err := c.News(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty list, got %d", len(items))
	}
}

func TestNewsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, testOptions())
	_, err := c.News(context.Background())
	if KindOf(err) != KindNetwork {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestRefreshThenFetch(t *testing.T) {
	var posts, gets atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/refresh-news":
			posts.Add(1)
			w.Write([]byte(`{"message": "3 news saved to DB"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/news":
			gets.Add(1)
			w.Write([]byte(listBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())
	items, err := c.RefreshAndFetch(context.Background())
	if err != nil {
		t.Fatalf("RefreshAndFetch failed: %v", err)
	}
	if posts.Load() != 1 || gets.Load() != 1 {
		t.Errorf("expected 1 POST and 1 GET, got %d and %d", posts.Load(), gets.Load())
	}
	if items[0].ID != 3 {
		t.Errorf("expected refreshed list newest first, got first id %d", items[0].ID)
	}
}

func TestRefreshNotInvokedTwiceConcurrently(t *testing.T) {
	var posts atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
			entered <- struct{}{}
			<-release
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())

	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()

	<-entered
	if !c.Refreshing() {
		t.Error("expected Refreshing() while trigger is in flight")
	}
	if err := c.Refresh(context.Background()); !errors.Is(err, ErrRefreshInFlight) {
		t.Errorf("expected ErrRefreshInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh failed: %v", err)
	}
	if posts.Load() != 1 {
		t.Errorf("expected refresh endpoint hit once, got %d", posts.Load())
	}
	if c.Refreshing() {
		t.Error("Refreshing() should clear after completion")
	}
}

func TestRefreshStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, testOptions())
	err := c.Refresh(context.Background())
	if KindOf(err) != KindStatus {
		t.Errorf("expected status error, got %v", err)
	}
	if c.Refreshing() {
		t.Error("Refreshing() should clear after failure")
	}
}

func TestBreakerOpensAfterConsecutiveTriggerFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var transitions []string
	opts := testOptions()
	opts.BreakerFailures = 2
	opts.BreakerCooldown = time.Hour
	opts.OnBreakerChange = func(from, to string) { transitions = append(transitions, from+"->"+to) }
	c := NewClient(server.URL, opts)

	for i := 0; i < 2; i++ {
		if err := c.Refresh(context.Background()); KindOf(err) != KindStatus {
			t.Fatalf("call %d: expected status error, got %v", i, err)
		}
	}

	err := c.Refresh(context.Background())
	if KindOf(err) != KindUnavailable {
		t.Fatalf("expected breaker to be open, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("open breaker should not hit the server, got %d hits", hits.Load())
	}
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("unexpected transitions %v", transitions)
	}
}

func TestNewsAlwaysReachesServer(t *testing.T) {
	var healthy atomic.Bool
	var reads atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/news" {
			reads.Add(1)
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(listBody))
	}))
	defer server.Close()

	opts := testOptions()
	opts.BreakerFailures = 2
	opts.BreakerCooldown = time.Hour
	c := NewClient(server.URL, opts)

	// Failed reads and failed triggers alike must not lock out later reads.
	for i := 0; i < 3; i++ {
		if _, err := c.News(context.Background()); KindOf(err) != KindStatus {
			t.Fatalf("read %d: expected status error, got %v", i, err)
		}
		c.Refresh(context.Background())
	}
	if err := c.Refresh(context.Background()); KindOf(err) != KindUnavailable {
		t.Fatalf("trigger breaker should be open, got %v", err)
	}

	healthy.Store(true)
	items, err := c.News(context.Background())
	if err != nil {
		t.Fatalf("read after recovery failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
	if reads.Load() != 4 {
		t.Errorf("every read should reach the server, got %d", reads.Load())
	}
}

func TestMissingScoreDecodesAsNaN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news": [
  {"id": 1, "title": "a", "coin_ticker": "BTC", "sentiment_score": 0.5},
  {"id": 2, "title": "b", "coin_ticker": "BTC", "sentiment_score": null},
  {"id": 3, "title": "c", "coin_ticker": "BTC"}
]}`))
	}))
	defer server.Close()

	items, err := NewClient(server.URL, testOptions()).List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].SentimentScore != 0.5 || !items[0].Scored() {
		t.Errorf("present score lost: %+v", items[0])
	}
	for _, item := range items[1:] {
		if !math.IsNaN(item.SentimentScore) || item.Scored() {
			t.Errorf("item %d: want NaN score, got %v", item.ID, item.SentimentScore)
		}
		if item.Title == "" || item.CoinTicker != "BTC" {
			t.Errorf("item %d: other fields not decoded: %+v", item.ID, item)
		}
	}
}

func TestPublished(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-10-15T11:00:00Z", true},
		{"2026-10-15T11:00:00+02:00", true},
		{"2026-10-15T11:00:00", true},
		{"2026-10-15 11:00:00", true},
		{"2026-10-15T11:00:00.123456", true},
		{"yesterday", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := Item{PublishedAt: tt.in}.Published()
		if ok != tt.ok {
			t.Errorf("Published(%q) ok=%v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestDescribeAndKindOf(t *testing.T) {
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain errors should be KindUnknown")
	}
	wrapped := &Error{Op: "list", Kind: KindDecode, Err: errors.New("bad")}
	if Describe(wrapped) == Describe(nil) {
		t.Error("decode errors should have their own description")
	}
}

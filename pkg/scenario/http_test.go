package scenario

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPSource_BasicGET(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected Accept: application/json header")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "remote", "horizon": 7}`)
	}))
	defer server.Close()

	src := &HTTPSource{URL: server.URL}

	s, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if s.Name != "remote" || s.Horizon != 7 {
		t.Errorf("got name=%s horizon=%d, want remote/7", s.Name, s.Horizon)
	}
}

func TestHTTPSource_HeadersAndRootPath(t *testing.T) {
	receivedAuth := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data": {"scenario": {"name": "nested"}}}`)
	}))
	defer server.Close()

	src := &HTTPSource{
		URL:      server.URL,
		Method:   http.MethodPost,
		Headers:  map[string]string{"Authorization": "Bearer secret"},
		RootPath: "data.scenario",
	}

	s, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if receivedAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", receivedAuth)
	}
	if s.Name != "nested" {
		t.Errorf("Name = %s, want nested", s.Name)
	}
}

func TestHTTPSource_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer server.Close()

	_, err := (&HTTPSource{URL: server.URL}).Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "http status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPSource_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	if _, err := (&HTTPSource{URL: server.URL}).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestHTTPSource_MissingURL(t *testing.T) {
	if _, err := (&HTTPSource{}).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing URL")
	}
}

func TestHTTPSource_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := (&HTTPSource{URL: server.URL}).Load(ctx); err == nil {
		t.Fatal("expected timeout error")
	}
}

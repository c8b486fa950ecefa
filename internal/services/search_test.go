package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestImageSearchService_FirstImage(t *testing.T) {
	srv := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			if r.URL.Query().Get("q") != "Honda Civic 2024" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			io.WriteString(w, `<html><script>vqd="4-123456789012345678901234567890";</script></html>`)
		case "/i.js":
			if r.URL.Query().Get("vqd") != "4-123456789012345678901234567890" {
				t.Errorf("vqd not forwarded: %q", r.URL.RawQuery)
			}
			io.WriteString(w, `{"results":[{"image":"https://img.example/civic.jpg","title":"Civic"},{"image":"https://img.example/2.jpg"}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	svc := NewImageSearchService(srv.URL)
	url, err := svc.FirstImage(context.Background(), "Honda Civic 2024")
	if err != nil {
		t.Fatalf("FirstImage: %v", err)
	}
	if url != "https://img.example/civic.jpg" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestImageSearchService_NoResults(t *testing.T) {
	srv := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			io.WriteString(w, `vqd='4-1'`)
			return
		}
		io.WriteString(w, `{"results":[]}`)
	})

	url, err := NewImageSearchService(srv.URL).FirstImage(context.Background(), "xe không tồn tại")
	if err != nil {
		t.Fatalf("FirstImage: %v", err)
	}
	if url != "" {
		t.Errorf("expected no image, got %q", url)
	}
}

func TestImageSearchService_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		query   string
	}{
		{
			name:    "empty query",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			query:   "  ",
		},
		{
			name: "missing token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html></html>")
			},
			query: "civic",
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/" {
					io.WriteString(w, `vqd="4-1"`)
					return
				}
				w.WriteHeader(http.StatusForbidden)
			},
			query: "civic",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newFakeOpenAI(t, tc.handler)
			if _, err := NewImageSearchService(srv.URL).FirstImage(context.Background(), tc.query); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTavilyService_Search(t *testing.T) {
	var req tavilyRequest
	srv := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tvly-test" {
			t.Errorf("missing bearer key")
		}
		json.NewDecoder(r.Body).Decode(&req)
		io.WriteString(w, `{"query":"giá vinfast vf8","results":[{"title":"VF8","url":"https://vinfast.vn/vf8","content":"Giá từ 1,019 tỷ"}]}`)
	})

	out, err := NewTavilyService(srv.URL, "tvly-test").Search(context.Background(), "giá vinfast vf8")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if req.MaxResults != 1 || req.Topic != "general" || req.Query != "giá vinfast vf8" {
		t.Errorf("unexpected request %+v", req)
	}
	if !strings.Contains(out, "https://vinfast.vn/vf8") || !strings.Contains(out, "Giá từ 1,019 tỷ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTavilyService_Errors(t *testing.T) {
	if _, err := NewTavilyService("", "").Search(context.Background(), "x"); err == nil {
		t.Fatal("expected error without api key")
	}

	srv := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":{"error":"Unauthorized: missing or invalid API key."}}`)
	})
	_, err := NewTavilyService(srv.URL, "bad").Search(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "invalid API key") {
		t.Fatalf("expected upstream message, got %v", err)
	}
}

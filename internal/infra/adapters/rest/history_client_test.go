package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHistoryClient_FetchMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages/get" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "c1" {
			t.Errorf("id = %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IsSuccess":true,"ResponseBody":{"messages":[{"id":"m3"},{"id":"m2"},{"id":"m1"}]}}`))
	}))
	defer srv.Close()

	c := NewHistoryClient(srv.URL+"/api/", "token")

	msgs, err := c.FetchMessages(context.Background(), "c1", 2, 20)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}

	want := []string{"m1", "m2", "m3"}
	if len(msgs) != len(want) {
		t.Fatalf("len = %d, want %d", len(msgs), len(want))
	}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Fatalf("msgs[%d].ID = %q, want %q", i, msgs[i].ID, id)
		}
	}
}

func TestHistoryClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unsuccessful", http.StatusOK, `{"IsSuccess":false}`, ErrUnsuccessful},
		{"server error", http.StatusInternalServerError, ``, nil},
		{"bad json", http.StatusOK, `{`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHistoryClient(srv.URL, "token").FetchMessages(context.Background(), "c1", 1, 20)
			if err == nil {
				t.Fatalf("FetchMessages returned nil error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

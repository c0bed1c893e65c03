package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*CampfireClient, *CredentialStore) {
	t.Helper()
	t.Setenv("CAMPFIRE_TOKEN", "")
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err := creds.Save("test-token"); err != nil {
		t.Fatalf("saving test token: %v", err)
	}
	return NewCampfireClient(srv.URL, creds, nil), creds
}

func TestFetchSession_SendsBearerTokenAndDecodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID header")
		}
		if got := r.URL.Query().Get("title"); got != "The Cave" {
			t.Errorf("title query = %q, want %q", got, "The Cave")
		}
		_ = json.NewEncoder(w).Encode(SessionResponse{
			ID:         "s1",
			StoryTitle: "The Cave",
			ChatTurns:  []RawTurn{{Sender: "Storyteller", Text: "dark"}},
		})
	})

	resp, err := client.FetchSession(context.Background(), "The Cave")
	if err != nil {
		t.Fatalf("FetchSession: %v", err)
	}
	if resp == nil || resp.ID != "s1" || len(resp.ChatTurns) != 1 {
		t.Fatalf("FetchSession response = %+v", resp)
	}
}

func TestFetchSession_NotFoundMeansNoSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	resp, err := client.FetchSession(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchSession on 404: %v", err)
	}
	if resp != nil {
		t.Fatalf("FetchSession on 404 = %+v, want nil", resp)
	}
}

func TestSubmitTurn_UnauthorizedClearsCredentials(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := client.SubmitTurn(context.Background(), TurnPayload{InputText: "hi"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("SubmitTurn on 401 = %v, want ErrUnauthorized", err)
	}
	if got := creds.Token(); got != "" {
		t.Fatalf("token survived unauthorized response: %q", got)
	}
}

func TestSubmitTurn_BackendErrorCarriesMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"the storyteller is resting"}`))
	})
	_, err := client.SubmitTurn(context.Background(), TurnPayload{InputText: "hi"})
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("SubmitTurn on 502 = %v, want BackendError", err)
	}
	if be.Message != "the storyteller is resting" {
		t.Fatalf("BackendError.Message = %q, want backend-provided text", be.Message)
	}
	if be.Status != http.StatusBadGateway {
		t.Fatalf("BackendError.Status = %d, want 502", be.Status)
	}
}

func TestSubmitTurn_TransportFailureIsNetworkError(t *testing.T) {
	creds := NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json"))
	client := NewCampfireClient("http://127.0.0.1:1", creds, nil)
	_, err := client.SubmitTurn(context.Background(), TurnPayload{InputText: "hi"})
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("SubmitTurn against closed port = %v, want NetworkError", err)
	}
}

func TestListTitlesAndDelete(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"titles":["One","Two"]}`))
		case r.Method == http.MethodDelete:
			if r.URL.Path != "/api/campfire/story/One" {
				t.Errorf("delete path = %q", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	titles, err := client.ListTitles(context.Background())
	if err != nil {
		t.Fatalf("ListTitles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "One" {
		t.Fatalf("ListTitles = %v", titles)
	}
	if err := client.DeleteStory(context.Background(), "One"); err != nil {
		t.Fatalf("DeleteStory: %v", err)
	}
}

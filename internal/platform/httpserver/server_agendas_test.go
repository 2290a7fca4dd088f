package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	agendaservice "openknesset/contexts/civic-data/agenda-service"
	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	"openknesset/contexts/civic-data/agenda-service/ports"
)

func newTestServer(t *testing.T) (*Server, agendaservice.Module) {
	t.Helper()
	module := agendaservice.NewInMemoryModule(nil)
	server := New(module, nil, ":0")
	return server, module
}

func seedTestAgenda(t *testing.T, module agendaservice.Module, agendaID string, editors ...string) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := module.Store.SaveAgenda(context.Background(), entities.Agenda{
		AgendaID:        agendaID,
		Name:            "Public transportation",
		PublicOwnerName: "Transit Now",
		Description:     "Expand public transportation",
		Editors:         editors,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("seed agenda failed: %v", err)
	}
}

func TestVoteActionMissingActionIsForbidden(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")
	module.Store.SetVote(ports.VoteProjection{VoteID: "vote-1", Title: "Budget vote"})

	request := httptest.NewRequest(http.MethodPost, "/agendas/agenda-1/votes/vote-1", strings.NewReader(""))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-User-Id", "user-1")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "POST must have an 'action' attribute") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestVoteActionNonEditorIsForbiddenWithPrivilegeMessage(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")
	module.Store.SetVote(ports.VoteProjection{VoteID: "vote-1", Title: "Budget vote"})

	form := url.Values{"action": {"ascribe"}}
	request := httptest.NewRequest(http.MethodPost, "/agendas/agenda-1/votes/vote-1", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-User-Id", "user-2")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "User user-2 does not have privileges to change agenda agenda-1") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestVoteActionRejectionIsStillOK(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")
	module.Store.SetVote(ports.VoteProjection{VoteID: "vote-1", Title: "Budget vote"})

	form := url.Values{"action": {"remove"}}
	request := httptest.NewRequest(http.MethodPost, "/agendas/agenda-1/votes/vote-1", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-User-Id", "user-1")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for a rejected action, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "You must ascribe the agenda before anything else.") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestEditFormNonEditorRedirectsToDetail(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")

	request := httptest.NewRequest(http.MethodGet, "/agendas/agenda-1/edit", nil)
	request.Header.Set("X-User-Id", "user-2")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/agendas/agenda-1" {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestCreateAgendaNonSuperuserRedirectsToList(t *testing.T) {
	server, module := newTestServer(t)
	module.Store.SetProfile(ports.Profile{UserID: "user-2", Username: "plain"})

	form := url.Values{
		"name":              {"Housing"},
		"public_owner_name": {"Housing Forum"},
		"description":       {"Affordable housing"},
	}
	request := httptest.NewRequest(http.MethodPost, "/agendas", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-User-Id", "user-2")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/agendas" {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestEditAgendaSuccessfulPostSeesOther(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")

	form := url.Values{
		"name":              {"Green transportation"},
		"public_owner_name": {"Transit Now"},
		"description":       {"Expand rail and bus lines"},
	}
	request := httptest.NewRequest(http.MethodPost, "/agendas/agenda-1/edit", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("X-User-Id", "user-1")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/agendas/agenda-1" {
		t.Fatalf("unexpected redirect target %q", location)
	}
}

func TestVoteActionWrongMethodNotAllowed(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")

	request := httptest.NewRequest(http.MethodGet, "/agendas/agenda-1/votes/vote-1", nil)
	request.Header.Set("X-User-Id", "user-1")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", recorder.Code)
	}
}

func TestVoteActionMissingUserIsUnauthorized(t *testing.T) {
	server, module := newTestServer(t)
	seedTestAgenda(t, module, "agenda-1", "user-1")

	form := url.Values{"action": {"ascribe"}}
	request := httptest.NewRequest(http.MethodPost, "/agendas/agenda-1/votes/vote-1", strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	server.mux.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	agendaservice "openknesset/contexts/civic-data/agenda-service"
	agendaerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	agendahttp "openknesset/contexts/civic-data/agenda-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "openknesset/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	agendas agendaservice.Module
}

func New(agendas agendaservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		agendas: agendas,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /agendas", s.handleListAgendas)
	s.mux.HandleFunc("POST /agendas", s.handleCreateAgenda)
	s.mux.HandleFunc("GET /agendas/new", s.handleNewAgendaForm)
	s.mux.HandleFunc("GET /agendas/{agenda_id}", s.handleAgendaDetail)
	s.mux.HandleFunc("GET /agendas/{agenda_id}/edit", s.handleEditAgendaForm)
	s.mux.HandleFunc("POST /agendas/{agenda_id}/edit", s.handleEditAgenda)
	s.mux.HandleFunc("POST /agendas/{agenda_id}/votes/{vote_id}", s.handleAgendaVoteAction)
}

// handleListAgendas serves the agenda listing. Anonymous callers are allowed;
// an X-User-Id header scopes the relevance filter and the watched flags.
func (s *Server) handleListAgendas(w http.ResponseWriter, r *http.Request) {
	resp, err := s.agendas.Handler.ListAgendasHandler(r.Context(), resolveUserID(r))
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgendaDetail(w http.ResponseWriter, r *http.Request) {
	agendaID := r.PathValue("agenda_id")
	resp, err := s.agendas.Handler.AgendaDetailHandler(r.Context(), agendaID, resolveUserID(r))
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNewAgendaForm(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeAgendaError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.agendas.Handler.NewAgendaFormHandler(r.Context(), userID)
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAgenda(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeAgendaError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	form, ok := decodeAgendaForm(w, r)
	if !ok {
		return
	}
	resp, err := s.agendas.Handler.CreateAgendaHandler(r.Context(), userID, form)
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	if resp.Created {
		w.Header().Set("Location", resp.RedirectTo)
		writeJSON(w, http.StatusSeeOther, resp)
		return
	}
	// Invalid submission: re-render the form with its field errors.
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditAgendaForm(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeAgendaError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	resp, err := s.agendas.Handler.EditAgendaFormHandler(r.Context(), r.PathValue("agenda_id"), userID)
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditAgenda(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeAgendaError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	form, ok := decodeAgendaForm(w, r)
	if !ok {
		return
	}
	resp, err := s.agendas.Handler.EditAgendaHandler(r.Context(), r.PathValue("agenda_id"), userID, form)
	if err != nil {
		writeAgendaDomainError(w, r, err)
		return
	}
	if resp.Saved {
		w.Header().Set("Location", resp.RedirectTo)
		writeJSON(w, http.StatusSeeOther, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAgendaVoteAction is the form-encoded action endpoint for one
// (agenda, vote) pair. Rejected actions are still 200 responses with an
// explanatory message; permission failures are 403 with a human-readable
// body.
func (s *Server) handleAgendaVoteAction(w http.ResponseWriter, r *http.Request) {
	userID := resolveUserID(r)
	if userID == "" {
		writeAgendaError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeAgendaError(w, http.StatusBadRequest, "invalid_form", "request body must be form-encoded")
		return
	}

	agendaID := r.PathValue("agenda_id")
	resp, err := s.agendas.Handler.VoteActionHandler(
		r.Context(),
		agendaID,
		r.PathValue("vote_id"),
		userID,
		r.PostFormValue("action"),
		r.PostFormValue("reasoning"),
	)
	if err != nil {
		switch {
		case errors.Is(err, agendaerrors.ErrActionRequired):
			writeAgendaError(w, http.StatusForbidden, "action_required", err.Error())
		case errors.Is(err, agendaerrors.ErrNotAgendaEditor):
			writeAgendaError(w, http.StatusForbidden, "not_agenda_editor",
				fmt.Sprintf("User %s does not have privileges to change agenda %s", userID, agendaID))
		default:
			writeAgendaDomainError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeAgendaDomainError maps domain errors outside the action endpoint.
// Guard failures on the form pages redirect the browser instead of erroring,
// matching the site's historical navigation.
func writeAgendaDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agendaerrors.ErrAgendaNotFound):
		writeAgendaError(w, http.StatusNotFound, "agenda_not_found", err.Error())
	case errors.Is(err, agendaerrors.ErrVoteNotFound):
		writeAgendaError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, agendaerrors.ErrAgendaVoteNotFound):
		writeAgendaError(w, http.StatusNotFound, "agenda_vote_not_found", err.Error())
	case errors.Is(err, agendaerrors.ErrNotAgendaEditor):
		http.Redirect(w, r, "/agendas/"+r.PathValue("agenda_id"), http.StatusFound)
	case errors.Is(err, agendaerrors.ErrSuperuserRequired):
		http.Redirect(w, r, "/agendas", http.StatusFound)
	case errors.Is(err, agendaerrors.ErrInvalidAgendaInput):
		writeAgendaError(w, http.StatusBadRequest, "invalid_agenda_input", err.Error())
	case errors.Is(err, agendaerrors.ErrAgendaVoteConflict):
		writeAgendaError(w, http.StatusConflict, "agenda_vote_conflict", err.Error())
	default:
		writeAgendaError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAgendaError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, agendahttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeAgendaForm accepts either a JSON body or a classic form-encoded
// submission for the create/edit forms.
func decodeAgendaForm(w http.ResponseWriter, r *http.Request) (agendahttp.AgendaForm, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var form agendahttp.AgendaForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeAgendaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return agendahttp.AgendaForm{}, false
		}
		return form, true
	}
	if err := r.ParseForm(); err != nil {
		writeAgendaError(w, http.StatusBadRequest, "invalid_form", "request body must be form-encoded")
		return agendahttp.AgendaForm{}, false
	}
	return agendahttp.AgendaForm{
		Name:            r.PostFormValue("name"),
		PublicOwnerName: r.PostFormValue("public_owner_name"),
		Description:     r.PostFormValue("description"),
	}, true
}

func resolveUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

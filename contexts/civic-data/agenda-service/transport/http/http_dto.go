package http

import (
	"strings"
	"time"
	"unicode/utf8"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AgendaForm is the shared create/edit form payload, submitted form-encoded.
type AgendaForm struct {
	Name            string `json:"name"`
	PublicOwnerName string `json:"public_owner_name"`
	Description     string `json:"description"`
}

// Validate returns field-level errors, or nil when the form is valid. The
// transport re-renders the form page with these errors instead of redirecting.
func (f AgendaForm) Validate() map[string]string {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(f.Name) == "" {
		fieldErrors["name"] = "this field is required"
	} else if utf8.RuneCountInString(f.Name) > 300 {
		fieldErrors["name"] = "ensure this value has at most 300 characters"
	}
	if strings.TrimSpace(f.PublicOwnerName) == "" {
		fieldErrors["public_owner_name"] = "this field is required"
	} else if utf8.RuneCountInString(f.PublicOwnerName) > 100 {
		fieldErrors["public_owner_name"] = "ensure this value has at most 100 characters"
	}
	if strings.TrimSpace(f.Description) == "" {
		fieldErrors["description"] = "this field is required"
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// AgendaFormPageResponse renders a create/edit form, prefilled or echoing an
// invalid submission together with its field errors.
type AgendaFormPageResponse struct {
	Form        AgendaForm        `json:"form"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type EditAgendaResponse struct {
	Saved       bool              `json:"saved"`
	RedirectTo  string            `json:"redirect_to,omitempty"`
	Form        AgendaForm        `json:"form"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type CreateAgendaResponse struct {
	Created     bool              `json:"created"`
	AgendaID    string            `json:"agenda_id,omitempty"`
	RedirectTo  string            `json:"redirect_to,omitempty"`
	Form        AgendaForm        `json:"form"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

type AgendaSummary struct {
	AgendaID        string `json:"agenda_id"`
	Name            string `json:"name"`
	PublicOwnerName string `json:"public_owner_name"`
	Description     string `json:"description"`
	Watched         bool   `json:"watched"`
}

type AgendaListResponse struct {
	Agendas []AgendaSummary `json:"agendas"`
}

type RankedInstanceItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// AgendaVoteItem is one ascribed vote on the detail page.
type AgendaVoteItem struct {
	AgendaVoteID string  `json:"agenda_vote_id"`
	VoteID       string  `json:"vote_id"`
	Score        float64 `json:"score"`
	Reasoning    string  `json:"reasoning"`
}

// AgendaDetailResponse concatenates top and bottom ranked instances into the
// selected_* lists, the way the detail page displays them.
type AgendaDetailResponse struct {
	AgendaID        string               `json:"agenda_id"`
	Title           string               `json:"title"`
	Name            string               `json:"name"`
	PublicOwnerName string               `json:"public_owner_name"`
	Description     string               `json:"description"`
	Watched         bool                 `json:"watched"`
	AgendaVotes     []AgendaVoteItem     `json:"agenda_votes"`
	SelectedMembers []RankedInstanceItem `json:"selected_members"`
	SelectedParties []RankedInstanceItem `json:"selected_parties"`
}

type VoteAgendaStanceItem struct {
	AgendaID  string  `json:"agenda_id"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

type VoteRepresentationResponse struct {
	VoteID  string                 `json:"vote_id"`
	Title   string                 `json:"title"`
	Time    time.Time              `json:"time"`
	Summary string                 `json:"summary,omitempty"`
	Agendas []VoteAgendaStanceItem `json:"agendas"`
}

// VoteActionResponse is the action endpoint's 200 body: either the re-fetched
// vote representation, or an explanatory rejection message.
type VoteActionResponse struct {
	Accepted bool                        `json:"accepted"`
	Message  string                      `json:"message,omitempty"`
	Vote     *VoteRepresentationResponse `json:"vote,omitempty"`
}

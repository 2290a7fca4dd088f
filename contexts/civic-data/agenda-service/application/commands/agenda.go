package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "openknesset/contexts/civic-data/agenda-service/application"
	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	"openknesset/contexts/civic-data/agenda-service/ports"
)

// EditAgendaCommand carries a validated edit-form submission.
type EditAgendaCommand struct {
	AgendaID        string
	UserID          string
	Name            string
	PublicOwnerName string
	Description     string
}

// CreateAgendaCommand carries a validated add-form submission. Creation is a
// superuser-only operation; the submitter becomes the sole initial editor.
type CreateAgendaCommand struct {
	UserID          string
	Name            string
	PublicOwnerName string
	Description     string
}

// AgendaUseCase orchestrates agenda lifecycle writes: editor-guarded edits
// and superuser-guarded creation.
type AgendaUseCase struct {
	Agendas  ports.AgendaRepository
	Profiles ports.ProfileRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// EditAgenda applies an edit-form submission. Callers outside the agenda's
// editor set get ErrNotAgendaEditor, which the transport maps to a redirect
// to the agenda's detail page rather than an error.
func (uc AgendaUseCase) EditAgenda(ctx context.Context, cmd EditAgendaCommand) (entities.Agenda, error) {
	logger := application.ResolveLogger(uc.Logger)

	agenda, err := uc.Agendas.GetAgenda(ctx, strings.TrimSpace(cmd.AgendaID))
	if err != nil {
		return entities.Agenda{}, err
	}
	if !agenda.HasEditor(cmd.UserID) {
		logger.Warn("agenda edit rejected for non-editor",
			"event", "agenda_edit_forbidden",
			"module", "civic-data/agenda-service",
			"layer", "application",
			"agenda_id", agenda.AgendaID,
			"user_id", strings.TrimSpace(cmd.UserID),
		)
		return entities.Agenda{}, domainerrors.ErrNotAgendaEditor
	}
	if hasEmptyAgendaFields(cmd.Name, cmd.PublicOwnerName, cmd.Description) {
		return entities.Agenda{}, domainerrors.ErrInvalidAgendaInput
	}

	agenda.Name = strings.TrimSpace(cmd.Name)
	agenda.PublicOwnerName = strings.TrimSpace(cmd.PublicOwnerName)
	agenda.Description = strings.TrimSpace(cmd.Description)
	agenda.UpdatedAt = uc.now()
	if err := uc.Agendas.SaveAgenda(ctx, agenda); err != nil {
		return entities.Agenda{}, err
	}
	logger.Info("agenda updated",
		"event", "agenda_updated",
		"module", "civic-data/agenda-service",
		"layer", "application",
		"agenda_id", agenda.AgendaID,
		"user_id", strings.TrimSpace(cmd.UserID),
	)
	return agenda, nil
}

// CreateAgenda creates an agenda with the submitting superuser as its only
// editor. Non-superusers get ErrSuperuserRequired, mapped to a redirect to
// the agenda list.
func (uc AgendaUseCase) CreateAgenda(ctx context.Context, cmd CreateAgendaCommand) (entities.Agenda, error) {
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.requireSuperuser(ctx, cmd.UserID); err != nil {
		return entities.Agenda{}, err
	}
	if hasEmptyAgendaFields(cmd.Name, cmd.PublicOwnerName, cmd.Description) {
		return entities.Agenda{}, domainerrors.ErrInvalidAgendaInput
	}

	agendaID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Agenda{}, err
	}
	now := uc.now()
	agenda := entities.Agenda{
		AgendaID:        agendaID,
		Name:            strings.TrimSpace(cmd.Name),
		PublicOwnerName: strings.TrimSpace(cmd.PublicOwnerName),
		Description:     strings.TrimSpace(cmd.Description),
		Editors:         []string{strings.TrimSpace(cmd.UserID)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Agendas.SaveAgenda(ctx, agenda); err != nil {
		return entities.Agenda{}, err
	}
	logger.Info("agenda created",
		"event", "agenda_created",
		"module", "civic-data/agenda-service",
		"layer", "application",
		"agenda_id", agenda.AgendaID,
		"user_id", strings.TrimSpace(cmd.UserID),
	)
	return agenda, nil
}

// SuggestedOwnerName resolves the prefill for the add form: the caller's own
// username. It carries the same superuser guard as CreateAgenda so the form
// is never shown to callers who cannot submit it.
func (uc AgendaUseCase) SuggestedOwnerName(ctx context.Context, userID string) (string, error) {
	if err := uc.requireSuperuser(ctx, userID); err != nil {
		return "", err
	}
	profile, _, err := uc.Profiles.GetProfile(ctx, strings.TrimSpace(userID))
	if err != nil {
		return "", err
	}
	return profile.Username, nil
}

func (uc AgendaUseCase) requireSuperuser(ctx context.Context, userID string) error {
	profile, found, err := uc.Profiles.GetProfile(ctx, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if !found || !profile.Superuser {
		return domainerrors.ErrSuperuserRequired
	}
	return nil
}

func (uc AgendaUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func hasEmptyAgendaFields(name string, publicOwnerName string, description string) bool {
	return strings.TrimSpace(name) == "" ||
		strings.TrimSpace(publicOwnerName) == "" ||
		strings.TrimSpace(description) == ""
}

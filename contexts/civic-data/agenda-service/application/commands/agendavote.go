package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "openknesset/contexts/civic-data/agenda-service/application"
	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	"openknesset/contexts/civic-data/agenda-service/ports"
)

// VoteActionCommand is one submission to the agenda/vote action endpoint.
// Action is the raw form value: "ascribe", "remove", "reasoning" or a score
// label from the fixed vocabulary.
type VoteActionCommand struct {
	AgendaID  string
	VoteID    string
	UserID    string
	Action    string
	Reasoning string
}

// VoteActionResult distinguishes accepted mutations (carrying the re-fetched
// vote representation) from soft rejections (carrying an explanatory message,
// still a successful request).
type VoteActionResult struct {
	Accepted bool
	Message  string
	Vote     ports.VoteRepresentation
}

// AgendaVoteUseCase runs the state machine over an (agenda, vote) pair, keyed
// by whether the pair is already ascribed.
type AgendaVoteUseCase struct {
	Agendas     ports.AgendaRepository
	AgendaVotes ports.AgendaVoteRepository
	Votes       ports.VoteCatalog
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// ApplyVoteAction mutates the pair and, on every accepted mutation, responds
// with the vote representation from the external vote-presentation component
// so clients can refresh in place.
//
// A missing action value is reported as ErrActionRequired, which the
// transport surfaces as forbidden. That mirrors the historical behavior of
// this endpoint; see DESIGN.md before changing it.
func (uc AgendaVoteUseCase) ApplyVoteAction(ctx context.Context, cmd VoteActionCommand) (VoteActionResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	agenda, err := uc.Agendas.GetAgenda(ctx, strings.TrimSpace(cmd.AgendaID))
	if err != nil {
		return VoteActionResult{}, err
	}
	if _, err := uc.Votes.GetVote(ctx, strings.TrimSpace(cmd.VoteID)); err != nil {
		return VoteActionResult{}, err
	}
	if !agenda.HasEditor(cmd.UserID) {
		logger.Warn("agenda vote action rejected for non-editor",
			"event", "agendavote_action_forbidden",
			"module", "civic-data/agenda-service",
			"layer", "application",
			"agenda_id", agenda.AgendaID,
			"vote_id", strings.TrimSpace(cmd.VoteID),
			"user_id", strings.TrimSpace(cmd.UserID),
		)
		return VoteActionResult{}, domainerrors.ErrNotAgendaEditor
	}

	action := strings.TrimSpace(cmd.Action)
	if action == "" {
		return VoteActionResult{}, domainerrors.ErrActionRequired
	}

	existing, ascribed, err := uc.AgendaVotes.GetAgendaVoteByPair(ctx, agenda.AgendaID, strings.TrimSpace(cmd.VoteID))
	if err != nil {
		return VoteActionResult{}, err
	}

	if !ascribed {
		if action != "ascribe" {
			return VoteActionResult{
				Message: fmt.Sprintf("Action '%s' wasn't accepted. You must ascribe the agenda before anything else.", action),
			}, nil
		}
		agendaVoteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return VoteActionResult{}, err
		}
		now := uc.now()
		agendaVote := entities.AgendaVote{
			AgendaVoteID: agendaVoteID,
			AgendaID:     agenda.AgendaID,
			VoteID:       strings.TrimSpace(cmd.VoteID),
			Reasoning:    "",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.AgendaVotes.SaveAgendaVote(ctx, agendaVote); err != nil {
			return VoteActionResult{}, err
		}
		return uc.accepted(ctx, logger, "agendavote_ascribed", agendaVote)
	}

	switch {
	case action == "remove":
		if err := uc.AgendaVotes.DeleteAgendaVote(ctx, existing.AgendaVoteID); err != nil {
			return VoteActionResult{}, err
		}
		return uc.accepted(ctx, logger, "agendavote_removed", existing)
	case action == "reasoning":
		existing.Reasoning = cmd.Reasoning
		existing.UpdatedAt = uc.now()
		if err := uc.AgendaVotes.SaveAgendaVote(ctx, existing); err != nil {
			return VoteActionResult{}, err
		}
		return uc.accepted(ctx, logger, "agendavote_reasoning_updated", existing)
	default:
		if !existing.SetScoreByText(action) {
			return VoteActionResult{
				Message: fmt.Sprintf("Action '%s' wasn't accepted", action),
			}, nil
		}
		existing.UpdatedAt = uc.now()
		if err := uc.AgendaVotes.SaveAgendaVote(ctx, existing); err != nil {
			return VoteActionResult{}, err
		}
		return uc.accepted(ctx, logger, "agendavote_score_updated", existing)
	}
}

func (uc AgendaVoteUseCase) accepted(
	ctx context.Context,
	logger *slog.Logger,
	event string,
	agendaVote entities.AgendaVote,
) (VoteActionResult, error) {
	representation, err := uc.Votes.PresentVote(ctx, agendaVote.VoteID)
	if err != nil {
		return VoteActionResult{}, err
	}
	logger.Info("agenda vote action applied",
		"event", event,
		"module", "civic-data/agenda-service",
		"layer", "application",
		"agenda_id", agendaVote.AgendaID,
		"vote_id", agendaVote.VoteID,
	)
	return VoteActionResult{Accepted: true, Vote: representation}, nil
}

func (uc AgendaVoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

package queries

import (
	"context"
	"strings"

	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	"openknesset/contexts/civic-data/agenda-service/ports"
)

const selectedInstanceCount = 3

// AgendaList is the relevance-filtered listing for one caller. Watched maps
// agenda IDs to whether the authenticated caller currently watches them; it
// stays empty for anonymous callers.
type AgendaList struct {
	Agendas []entities.Agenda
	Watched map[string]bool
}

// AgendaDetail is the read model for one agenda's detail page.
type AgendaDetail struct {
	Agenda        entities.Agenda
	Title         string
	Watched       bool
	Votes         []entities.AgendaVote
	TopMembers    []ports.RankedInstance
	BottomMembers []ports.RankedInstance
	TopParties    []ports.RankedInstance
	BottomParties []ports.RankedInstance
}

type AgendaQueries struct {
	Agendas     ports.AgendaRepository
	AgendaVotes ports.AgendaVoteRepository
	Profiles    ports.ProfileRepository
	Rankings    ports.RankingSource
}

// ListAgendas returns the agendas relevant to the caller. The relevance
// predicate itself lives in the repository; an empty user ID means anonymous.
func (uc AgendaQueries) ListAgendas(ctx context.Context, userID string) (AgendaList, error) {
	userID = strings.TrimSpace(userID)
	agendas, err := uc.Agendas.ListRelevantForUser(ctx, userID)
	if err != nil {
		return AgendaList{}, err
	}

	watched := make(map[string]bool)
	if userID != "" {
		watchedIDs, err := uc.watchedAgendaIDs(ctx, userID)
		if err != nil {
			return AgendaList{}, err
		}
		for _, agenda := range agendas {
			if watchedIDs[agenda.AgendaID] {
				watched[agenda.AgendaID] = true
			}
		}
	}
	return AgendaList{Agendas: agendas, Watched: watched}, nil
}

// AgendaDetail resolves one agenda through the same relevance filter as the
// listing, so an out-of-scope agenda is a not-found, and decorates it with
// the watched flag and the top/bottom ranked members and parties.
func (uc AgendaQueries) AgendaDetail(ctx context.Context, agendaID string, userID string) (AgendaDetail, error) {
	userID = strings.TrimSpace(userID)
	agenda, err := uc.Agendas.GetRelevantForUser(ctx, strings.TrimSpace(agendaID), userID)
	if err != nil {
		return AgendaDetail{}, err
	}

	watched := false
	if userID != "" {
		watchedIDs, err := uc.watchedAgendaIDs(ctx, userID)
		if err != nil {
			return AgendaDetail{}, err
		}
		watched = watchedIDs[agenda.AgendaID]
	}

	agendaVotes, err := uc.AgendaVotes.ListAgendaVotes(ctx, agenda.AgendaID)
	if err != nil {
		return AgendaDetail{}, err
	}

	topMembers, bottomMembers, err := uc.Rankings.SelectedMembers(ctx, agenda.AgendaID, selectedInstanceCount, selectedInstanceCount)
	if err != nil {
		return AgendaDetail{}, err
	}
	topParties, bottomParties, err := uc.Rankings.SelectedParties(ctx, agenda.AgendaID, selectedInstanceCount, selectedInstanceCount)
	if err != nil {
		return AgendaDetail{}, err
	}

	return AgendaDetail{
		Agenda:        agenda,
		Title:         agenda.DisplayTitle(),
		Watched:       watched,
		Votes:         agendaVotes,
		TopMembers:    topMembers,
		BottomMembers: bottomMembers,
		TopParties:    topParties,
		BottomParties: bottomParties,
	}, nil
}

// EditForm loads an agenda for edit-form prefill, guarded by the editor set.
func (uc AgendaQueries) EditForm(ctx context.Context, agendaID string, userID string) (entities.Agenda, error) {
	agenda, err := uc.Agendas.GetAgenda(ctx, strings.TrimSpace(agendaID))
	if err != nil {
		return entities.Agenda{}, err
	}
	if !agenda.HasEditor(userID) {
		return entities.Agenda{}, domainerrors.ErrNotAgendaEditor
	}
	return agenda, nil
}

func (uc AgendaQueries) watchedAgendaIDs(ctx context.Context, userID string) (map[string]bool, error) {
	profile, found, err := uc.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	if !found {
		return ids, nil
	}
	for _, agendaID := range profile.WatchedAgendaIDs {
		ids[agendaID] = true
	}
	return ids, nil
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	"openknesset/contexts/civic-data/agenda-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory implementation of every agenda-service port, used by
// NewInMemoryModule and the tests.
type Store struct {
	mu sync.RWMutex

	agendas     map[string]entities.Agenda
	agendaVotes map[string]entities.AgendaVote
	profiles    map[string]ports.Profile
	votes       map[string]ports.VoteProjection

	memberRankings map[string][]ports.RankedInstance
	partyRankings  map[string][]ports.RankedInstance

	now time.Time
}

func NewStore() *Store {
	return &Store{
		agendas:        make(map[string]entities.Agenda),
		agendaVotes:    make(map[string]entities.AgendaVote),
		profiles:       make(map[string]ports.Profile),
		votes:          make(map[string]ports.VoteProjection),
		memberRankings: make(map[string][]ports.RankedInstance),
		partyRankings:  make(map[string][]ports.RankedInstance),
	}
}

func (s *Store) SetProfile(profile ports.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[strings.TrimSpace(profile.UserID)] = profile
}

func (s *Store) SetVote(vote ports.VoteProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
}

// SetMemberRanking seeds the externally computed ranking for an agenda,
// ordered best score first.
func (s *Store) SetMemberRanking(agendaID string, ranked []ports.RankedInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberRankings[strings.TrimSpace(agendaID)] = ranked
}

func (s *Store) SetPartyRanking(agendaID string, ranked []ports.RankedInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partyRankings[strings.TrimSpace(agendaID)] = ranked
}

// SetNow pins the clock for deterministic tests; the zero value falls back
// to wall time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) ListRelevantForUser(_ context.Context, _ string) ([]entities.Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Agenda, 0, len(s.agendas))
	for _, agenda := range s.agendas {
		items = append(items, agenda)
	}
	sortAgendasByName(items)
	return items, nil
}

func (s *Store) GetRelevantForUser(ctx context.Context, agendaID string, userID string) (entities.Agenda, error) {
	relevant, err := s.ListRelevantForUser(ctx, userID)
	if err != nil {
		return entities.Agenda{}, err
	}
	for _, agenda := range relevant {
		if agenda.AgendaID == strings.TrimSpace(agendaID) {
			return agenda, nil
		}
	}
	return entities.Agenda{}, domainerrors.ErrAgendaNotFound
}

func (s *Store) GetAgenda(_ context.Context, agendaID string) (entities.Agenda, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agenda, ok := s.agendas[strings.TrimSpace(agendaID)]
	if !ok {
		return entities.Agenda{}, domainerrors.ErrAgendaNotFound
	}
	return agenda, nil
}

func (s *Store) SaveAgenda(_ context.Context, agenda entities.Agenda) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agendas[strings.TrimSpace(agenda.AgendaID)] = agenda
	return nil
}

func (s *Store) GetAgendaVoteByPair(_ context.Context, agendaID string, voteID string) (entities.AgendaVote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agendaID = strings.TrimSpace(agendaID)
	voteID = strings.TrimSpace(voteID)
	for _, agendaVote := range s.agendaVotes {
		if agendaVote.AgendaID == agendaID && agendaVote.VoteID == voteID {
			return agendaVote, true, nil
		}
	}
	return entities.AgendaVote{}, false, nil
}

func (s *Store) SaveAgendaVote(_ context.Context, agendaVote entities.AgendaVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.agendaVotes {
		if id == strings.TrimSpace(agendaVote.AgendaVoteID) {
			continue
		}
		if existing.AgendaID == agendaVote.AgendaID && existing.VoteID == agendaVote.VoteID {
			return domainerrors.ErrAgendaVoteConflict
		}
	}
	s.agendaVotes[strings.TrimSpace(agendaVote.AgendaVoteID)] = agendaVote
	return nil
}

func (s *Store) DeleteAgendaVote(_ context.Context, agendaVoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(agendaVoteID)
	if _, ok := s.agendaVotes[key]; !ok {
		return domainerrors.ErrAgendaVoteNotFound
	}
	delete(s.agendaVotes, key)
	return nil
}

func (s *Store) ListAgendaVotes(_ context.Context, agendaID string) ([]entities.AgendaVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.AgendaVote, 0)
	for _, agendaVote := range s.agendaVotes {
		if agendaVote.AgendaID == strings.TrimSpace(agendaID) {
			items = append(items, agendaVote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (ports.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[strings.TrimSpace(userID)]
	if !ok {
		return ports.Profile{}, false, nil
	}
	return profile, true, nil
}

func (s *Store) GetVote(_ context.Context, voteID string) (ports.VoteProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[strings.TrimSpace(voteID)]
	if !ok {
		return ports.VoteProjection{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

// PresentVote builds the vote representation the action endpoint embeds in
// its responses: the projection plus every agenda stance on the vote.
func (s *Store) PresentVote(ctx context.Context, voteID string) (ports.VoteRepresentation, error) {
	vote, err := s.GetVote(ctx, voteID)
	if err != nil {
		return ports.VoteRepresentation{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	stances := make([]ports.VoteAgendaStance, 0)
	for _, agendaVote := range s.agendaVotes {
		if agendaVote.VoteID != vote.VoteID {
			continue
		}
		stances = append(stances, ports.VoteAgendaStance{
			AgendaID:  agendaVote.AgendaID,
			Score:     agendaVote.Score,
			Reasoning: agendaVote.Reasoning,
		})
	}
	sort.Slice(stances, func(i, j int) bool {
		return stances[i].AgendaID < stances[j].AgendaID
	})
	return ports.VoteRepresentation{
		VoteID:  vote.VoteID,
		Title:   vote.Title,
		Time:    vote.Time,
		Agendas: stances,
	}, nil
}

func (s *Store) SelectedMembers(_ context.Context, agendaID string, top int, bottom int) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return splitRanking(s.memberRankings[strings.TrimSpace(agendaID)], top, bottom)
}

func (s *Store) SelectedParties(_ context.Context, agendaID string, top int, bottom int) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return splitRanking(s.partyRankings[strings.TrimSpace(agendaID)], top, bottom)
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func splitRanking(ranked []ports.RankedInstance, top int, bottom int) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	if top > len(ranked) {
		top = len(ranked)
	}
	topSlice := append([]ports.RankedInstance(nil), ranked[:top]...)
	if bottom > len(ranked)-top {
		bottom = len(ranked) - top
	}
	bottomSlice := append([]ports.RankedInstance(nil), ranked[len(ranked)-bottom:]...)
	return topSlice, bottomSlice, nil
}

func sortAgendasByName(items []entities.Agenda) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].AgendaID < items[j].AgendaID
		}
		return items[i].Name < items[j].Name
	})
}

package ports

import (
	"context"
	"time"

	"openknesset/contexts/civic-data/agenda-service/domain/entities"
)

// AgendaRepository owns agenda persistence. The "relevant" methods apply the
// store's relevance predicate for the requesting identity; an agenda outside
// the caller's relevance scope is reported as not found, never forbidden.
type AgendaRepository interface {
	ListRelevantForUser(ctx context.Context, userID string) ([]entities.Agenda, error)
	GetRelevantForUser(ctx context.Context, agendaID string, userID string) (entities.Agenda, error)
	GetAgenda(ctx context.Context, agendaID string) (entities.Agenda, error)
	SaveAgenda(ctx context.Context, agenda entities.Agenda) error
}

type AgendaVoteRepository interface {
	GetAgendaVoteByPair(ctx context.Context, agendaID string, voteID string) (entities.AgendaVote, bool, error)
	SaveAgendaVote(ctx context.Context, agendaVote entities.AgendaVote) error
	DeleteAgendaVote(ctx context.Context, agendaVoteID string) error
	ListAgendaVotes(ctx context.Context, agendaID string) ([]entities.AgendaVote, error)
}

// Profile is the per-user record the auth layer maintains; this subsystem
// only reads it.
type Profile struct {
	UserID           string
	Username         string
	Email            string
	Superuser        bool
	WatchedAgendaIDs []string
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (Profile, bool, error)
}

// VoteProjection is the read-only view of an external legislative vote.
type VoteProjection struct {
	VoteID string
	Title  string
	Time   time.Time
}

// VoteRepresentation is the vote as rendered by the external
// vote-presentation component. The action endpoint embeds it in responses so
// clients can refresh in place; it is consumed here, not redefined.
type VoteRepresentation struct {
	VoteID  string
	Title   string
	Time    time.Time
	Summary string
	Agendas []VoteAgendaStance
}

type VoteAgendaStance struct {
	AgendaID  string
	Score     float64
	Reasoning string
}

type VoteCatalog interface {
	GetVote(ctx context.Context, voteID string) (VoteProjection, error)
	PresentVote(ctx context.Context, voteID string) (VoteRepresentation, error)
}

// RankedInstance is one entry of an externally computed ranking of members or
// parties against an agenda.
type RankedInstance struct {
	ID    string
	Name  string
	Score float64
}

type RankingSource interface {
	SelectedMembers(ctx context.Context, agendaID string, top int, bottom int) ([]RankedInstance, []RankedInstance, error)
	SelectedParties(ctx context.Context, agendaID string, top int, bottom int) ([]RankedInstance, []RankedInstance, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

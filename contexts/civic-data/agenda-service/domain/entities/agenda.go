package entities

import (
	"strings"
	"time"
)

// Score labels form the fixed vocabulary an editor may submit as an action on
// an ascribed agenda/vote pair. Each label resolves to a numeric stance.
const (
	ScoreOpposesFully      = "Opposes fully"
	ScoreOpposesPartially  = "Opposes partially"
	ScoreAgnostic          = "Agnostic"
	ScoreCompliesPartially = "Complies partially"
	ScoreCompliesFully     = "Complies fully"
)

var scoreTextToScore = map[string]float64{
	ScoreOpposesFully:      -1.0,
	ScoreOpposesPartially:  -0.5,
	ScoreAgnostic:          0.0,
	ScoreCompliesPartially: 0.5,
	ScoreCompliesFully:     1.0,
}

// ScoreFromText resolves a score label to its numeric value. The second
// return reports whether the label belongs to the vocabulary.
func ScoreFromText(label string) (float64, bool) {
	score, ok := scoreTextToScore[label]
	return score, ok
}

// ScoreLabels returns the vocabulary in ascending score order.
func ScoreLabels() []string {
	return []string{
		ScoreOpposesFully,
		ScoreOpposesPartially,
		ScoreAgnostic,
		ScoreCompliesPartially,
		ScoreCompliesFully,
	}
}

// Agenda is a named, owned collection of position statements about
// legislative votes. Editors may mutate it; watchers only subscribe.
type Agenda struct {
	AgendaID        string
	Name            string
	PublicOwnerName string
	Description     string
	Editors         []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a Agenda) HasEditor(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	for _, editor := range a.Editors {
		if editor == userID {
			return true
		}
	}
	return false
}

// DisplayTitle falls back to a placeholder when the agenda has no usable name.
func (a Agenda) DisplayTitle() string {
	if strings.TrimSpace(a.Name) == "" {
		return "None"
	}
	return a.Name
}

// AgendaVote links exactly one agenda to exactly one vote and carries the
// agenda's annotation of that vote. At most one exists per (agenda, vote).
type AgendaVote struct {
	AgendaVoteID string
	AgendaID     string
	VoteID       string
	Reasoning    string
	Score        float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SetScoreByText applies a vocabulary label; unknown labels leave the score
// untouched and return false.
func (av *AgendaVote) SetScoreByText(label string) bool {
	score, ok := ScoreFromText(label)
	if !ok {
		return false
	}
	av.Score = score
	return true
}

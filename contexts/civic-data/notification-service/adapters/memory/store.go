package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
	"openknesset/contexts/civic-data/notification-service/ports"
)

// Store is the in-memory implementation of every notification-service port,
// including a capturing mailer, used by NewInMemoryModule and the tests.
type Store struct {
	mu sync.RWMutex

	recipients []entities.Recipient
	profiles   map[string]bool
	follows    map[string][]entities.Follow
	actions    []entities.Action
	lastSent   map[string]entities.LastSent

	sent    []entities.DigestEmail
	sendErr error

	now time.Time
}

func NewStore() *Store {
	return &Store{
		profiles: make(map[string]bool),
		follows:  make(map[string][]entities.Follow),
		lastSent: make(map[string]entities.LastSent),
	}
}

// AddRecipient registers a user for digest runs. withProfile mirrors whether
// the user has a site profile; profile-less users are skipped by the digest.
func (s *Store) AddRecipient(recipient entities.Recipient, withProfile bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = append(s.recipients, recipient)
	s.profiles[strings.TrimSpace(recipient.UserID)] = withProfile
}

func (s *Store) AddFollow(follow entities.Follow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := strings.TrimSpace(follow.UserID)
	s.follows[userID] = append(s.follows[userID], follow)
}

func (s *Store) AddAction(action entities.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

// SetNow pins the clock for deterministic tests; the zero value falls back
// to wall time.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

// FailSends makes every subsequent Send return err, for abort-path tests.
func (s *Store) FailSends(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

// SentEmails returns the emails captured so far, in dispatch order.
func (s *Store) SentEmails() []entities.DigestEmail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.DigestEmail(nil), s.sent...)
}

// LastSentFor exposes the stored watermark for assertions.
func (s *Store) LastSentFor(userID string, entityType entities.EntityType, entityID string) (entities.LastSent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lastSent, ok := s.lastSent[lastSentKey(userID, entityType, entityID)]
	return lastSent, ok
}

func (s *Store) ListRecipients(_ context.Context) ([]entities.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Recipient(nil), s.recipients...), nil
}

func (s *Store) HasProfile(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profiles[strings.TrimSpace(userID)], nil
}

func (s *Store) ListFollows(_ context.Context, userID string) ([]entities.Follow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Follow(nil), s.follows[strings.TrimSpace(userID)]...), nil
}

func (s *Store) ListActorActionsSince(
	_ context.Context,
	actorType entities.EntityType,
	actorID string,
	since time.Time,
) ([]entities.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Action, 0)
	for _, action := range s.actions {
		if action.ActorType != actorType || action.ActorID != strings.TrimSpace(actorID) {
			continue
		}
		if !action.Timestamp.After(since) {
			continue
		}
		items = append(items, action)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
	return items, nil
}

func (s *Store) GetLastSent(
	_ context.Context,
	userID string,
	entityType entities.EntityType,
	entityID string,
) (entities.LastSent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lastSent, ok := s.lastSent[lastSentKey(userID, entityType, entityID)]
	if !ok {
		return entities.LastSent{}, false, nil
	}
	return lastSent, true, nil
}

func (s *Store) SaveLastSent(_ context.Context, lastSent entities.LastSent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSent[lastSentKey(lastSent.UserID, lastSent.EntityType, lastSent.EntityID)] = lastSent
	return nil
}

func (s *Store) Send(_ context.Context, email entities.DigestEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, email)
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func lastSentKey(userID string, entityType entities.EntityType, entityID string) string {
	return strings.TrimSpace(userID) + "\x00" + string(entityType) + "\x00" + strings.TrimSpace(entityID)
}

var _ ports.UserDirectory = (*Store)(nil)
var _ ports.ProfileChecker = (*Store)(nil)
var _ ports.FollowRepository = (*Store)(nil)
var _ ports.ActionRepository = (*Store)(nil)
var _ ports.LastSentRepository = (*Store)(nil)
var _ ports.Mailer = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)

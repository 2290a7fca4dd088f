package ports

import (
	"context"
	"time"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
)

// UserDirectory lists the users a digest run considers.
type UserDirectory interface {
	ListRecipients(ctx context.Context) ([]entities.Recipient, error)
}

// ProfileChecker reports whether a user has a site profile. Users without one
// are skipped by the digest run.
type ProfileChecker interface {
	HasProfile(ctx context.Context, userID string) (bool, error)
}

// FollowRepository lists a user's follow edges. Duplicate edges to the same
// entity may be returned; the use case collapses them.
type FollowRepository interface {
	ListFollows(ctx context.Context, userID string) ([]entities.Follow, error)
}

// ActionRepository reads the activity stream of one followed entity.
type ActionRepository interface {
	// ListActorActionsSince returns the entity's actions strictly after
	// since, newest first.
	ListActorActionsSince(ctx context.Context, actorType entities.EntityType, actorID string, since time.Time) ([]entities.Action, error)
}

// LastSentRepository owns the per-(user, entity) notification watermarks.
type LastSentRepository interface {
	GetLastSent(ctx context.Context, userID string, entityType entities.EntityType, entityID string) (entities.LastSent, bool, error)
	SaveLastSent(ctx context.Context, lastSent entities.LastSent) error
}

// Mailer queues one digest email for delivery.
type Mailer interface {
	Send(ctx context.Context, email entities.DigestEmail) error
}

// DigestRenderer produces the text and HTML fragments a digest email is
// assembled from. A missing specific template is never an error; renderers
// fall back to generic templates or static titles.
type DigestRenderer interface {
	SectionTitle(bucket entities.EntityType) (text string, html string)
	EntityHeader(entity entities.FollowedEntity) (text string, html string, err error)
	ActionFragment(action entities.Action) (text string, html string, err error)
	Header(recipient entities.Recipient) (text string, html string, err error)
	Footer(recipient entities.Recipient) (text string, html string, err error)
}

type Clock interface {
	Now() time.Time
}

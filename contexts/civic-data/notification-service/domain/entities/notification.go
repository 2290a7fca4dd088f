package entities

import (
	"strings"
	"time"
)

// EntityType classifies what a user follows. Member and agenda get their own
// digest sections; everything else collapses into the catch-all bucket.
type EntityType string

const (
	EntityTypeMember EntityType = "member"
	EntityTypeAgenda EntityType = "agenda"
	EntityTypeOther  EntityType = "other"
)

// BucketOrder fixes the section order inside a digest email.
func BucketOrder() []EntityType {
	return []EntityType{EntityTypeMember, EntityTypeAgenda, EntityTypeOther}
}

// BucketFor maps an entity type to its digest bucket. Unrecognized types land
// in the catch-all bucket.
func BucketFor(entityType EntityType) EntityType {
	switch entityType {
	case EntityTypeMember, EntityTypeAgenda:
		return entityType
	default:
		return EntityTypeOther
	}
}

// Recipient is a user the digest run considers for an email.
type Recipient struct {
	UserID   string
	Username string
	Email    string
}

// Follow is one follow edge from a user to an entity. EntityName is the
// display name used in the entity's digest header.
type Follow struct {
	UserID     string
	EntityType EntityType
	EntityID   string
	EntityName string
}

// Entity returns the followed entity the digest reports on.
func (f Follow) Entity() FollowedEntity {
	return FollowedEntity{
		Type: f.EntityType,
		ID:   strings.TrimSpace(f.EntityID),
		Name: f.EntityName,
	}
}

// FollowedEntity identifies one followed actor inside a digest.
type FollowedEntity struct {
	Type EntityType
	ID   string
	Name string
}

// Action is one activity-stream entry attributed to a followed entity.
type Action struct {
	ActionID    string
	ActorType   EntityType
	ActorID     string
	ActorName   string
	Verb        string
	Description string
	TargetURL   string
	Timestamp   time.Time
}

// LastSent is the per-(user, followed entity) notification watermark. Actions
// at or before Time have already been reported to the user.
type LastSent struct {
	UserID     string
	EntityType EntityType
	EntityID   string
	Time       time.Time
}

// DigestEmail is one assembled notification email, carrying both the plain
// text body and its HTML alternative.
type DigestEmail struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

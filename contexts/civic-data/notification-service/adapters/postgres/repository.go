package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"openknesset/contexts/civic-data/notification-service/domain/entities"
	"openknesset/contexts/civic-data/notification-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository backs the digest run with the site's relational data: read
// models for users, profiles, follows and the activity stream, plus the
// owned last_sent watermark table.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) ListRecipients(ctx context.Context) ([]entities.Recipient, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Where("email <> ''").
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("notify_repo_list_recipients_failed", err)
	}
	items := make([]entities.Recipient, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Recipient{
			UserID:   row.UserID,
			Username: row.Username,
			Email:    row.Email,
		})
	}
	return items, nil
}

func (r *Repository) HasProfile(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&profileModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("notify_repo_has_profile_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return count > 0, nil
}

func (r *Repository) ListFollows(ctx context.Context, userID string) ([]entities.Follow, error) {
	var rows []followModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("entity_type ASC, entity_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("notify_repo_list_follows_failed", err, "user_id", strings.TrimSpace(userID))
	}
	items := make([]entities.Follow, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Follow{
			UserID:     row.UserID,
			EntityType: entities.EntityType(row.EntityType),
			EntityID:   row.EntityID,
			EntityName: row.EntityName,
		})
	}
	return items, nil
}

func (r *Repository) ListActorActionsSince(
	ctx context.Context,
	actorType entities.EntityType,
	actorID string,
	since time.Time,
) ([]entities.Action, error) {
	var rows []actionModel
	err := r.db.WithContext(ctx).
		Where("actor_type = ?", string(actorType)).
		Where("actor_id = ?", strings.TrimSpace(actorID)).
		Where("timestamp > ?", since.UTC()).
		Order("timestamp DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("notify_repo_list_actions_failed", err,
			"actor_type", string(actorType),
			"actor_id", strings.TrimSpace(actorID),
		)
	}
	items := make([]entities.Action, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Action{
			ActionID:    row.ID,
			ActorType:   entities.EntityType(row.ActorType),
			ActorID:     row.ActorID,
			ActorName:   row.ActorName,
			Verb:        row.Verb,
			Description: row.Description,
			TargetURL:   row.TargetURL,
			Timestamp:   row.Timestamp.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) GetLastSent(
	ctx context.Context,
	userID string,
	entityType entities.EntityType,
	entityID string,
) (entities.LastSent, bool, error) {
	var row lastSentModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("entity_type = ?", string(entityType)).
		Where("entity_id = ?", strings.TrimSpace(entityID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LastSent{}, false, nil
		}
		return entities.LastSent{}, false, r.logError("notify_repo_get_last_sent_failed", err,
			"user_id", strings.TrimSpace(userID),
			"entity_type", string(entityType),
			"entity_id", strings.TrimSpace(entityID),
		)
	}
	return entities.LastSent{
		UserID:     row.UserID,
		EntityType: entities.EntityType(row.EntityType),
		EntityID:   row.EntityID,
		Time:       row.Time.UTC(),
	}, true, nil
}

func (r *Repository) SaveLastSent(ctx context.Context, lastSent entities.LastSent) error {
	row := lastSentModel{
		UserID:     strings.TrimSpace(lastSent.UserID),
		EntityType: string(lastSent.EntityType),
		EntityID:   strings.TrimSpace(lastSent.EntityID),
		Time:       lastSent.Time.UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "entity_type"},
			{Name: "entity_id"},
		},
		DoUpdates: clause.Assignments(map[string]any{"time": row.Time}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("notify_repo_save_last_sent_failed", err,
			"user_id", row.UserID,
			"entity_type", row.EntityType,
			"entity_id", row.EntityID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "civic-data/notification-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("notification repository operation failed", fields...)
	return err
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type userModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	Username string `gorm:"column:username"`
	Email    string `gorm:"column:email"`
}

func (userModel) TableName() string {
	return "users"
}

type profileModel struct {
	UserID string `gorm:"column:user_id;primaryKey"`
}

func (profileModel) TableName() string {
	return "profiles"
}

type followModel struct {
	UserID     string `gorm:"column:user_id;primaryKey"`
	EntityType string `gorm:"column:entity_type;primaryKey"`
	EntityID   string `gorm:"column:entity_id;primaryKey"`
	EntityName string `gorm:"column:entity_name"`
}

func (followModel) TableName() string {
	return "follows"
}

type actionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ActorType   string    `gorm:"column:actor_type"`
	ActorID     string    `gorm:"column:actor_id"`
	ActorName   string    `gorm:"column:actor_name"`
	Verb        string    `gorm:"column:verb"`
	Description string    `gorm:"column:description"`
	TargetURL   string    `gorm:"column:target_url"`
	Timestamp   time.Time `gorm:"column:timestamp"`
}

func (actionModel) TableName() string {
	return "actions"
}

type lastSentModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	EntityType string    `gorm:"column:entity_type;primaryKey"`
	EntityID   string    `gorm:"column:entity_id;primaryKey"`
	Time       time.Time `gorm:"column:time"`
}

func (lastSentModel) TableName() string {
	return "last_sent"
}

var _ ports.UserDirectory = (*Repository)(nil)
var _ ports.ProfileChecker = (*Repository)(nil)
var _ ports.FollowRepository = (*Repository)(nil)
var _ ports.ActionRepository = (*Repository)(nil)
var _ ports.LastSentRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}

package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"openknesset/contexts/civic-data/agenda-service/domain/entities"
	domainerrors "openknesset/contexts/civic-data/agenda-service/domain/errors"
	"openknesset/contexts/civic-data/agenda-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

// ListRelevantForUser applies the store-side relevance predicate. The
// current predicate is "all agendas, name-ordered" for both anonymous and
// authenticated callers; narrowing it is a repository-only change.
func (r *Repository) ListRelevantForUser(ctx context.Context, _ string) ([]entities.Agenda, error) {
	var rows []agendaModel
	if err := r.db.WithContext(ctx).
		Order("name ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("agenda_repo_list_relevant_failed", err)
	}
	items := make([]entities.Agenda, 0, len(rows))
	for _, row := range rows {
		agenda, err := r.withEditors(ctx, row)
		if err != nil {
			return nil, err
		}
		items = append(items, agenda)
	}
	return items, nil
}

func (r *Repository) GetRelevantForUser(ctx context.Context, agendaID string, _ string) (entities.Agenda, error) {
	return r.GetAgenda(ctx, agendaID)
}

func (r *Repository) GetAgenda(ctx context.Context, agendaID string) (entities.Agenda, error) {
	var row agendaModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agendaID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Agenda{}, domainerrors.ErrAgendaNotFound
		}
		return entities.Agenda{}, r.logError("agenda_repo_get_agenda_failed", err, "agenda_id", strings.TrimSpace(agendaID))
	}
	return r.withEditors(ctx, row)
}

func (r *Repository) SaveAgenda(ctx context.Context, agenda entities.Agenda) error {
	row := agendaModelFromEntity(agenda)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":              row.Name,
			"public_owner_name": row.PublicOwnerName,
			"description":       row.Description,
			"updated_at":        row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("agenda_repo_save_agenda_failed", create.Error, "agenda_id", row.ID)
	}

	// The editor set is replaced wholesale; it is small and rarely changes.
	if err := r.db.WithContext(ctx).
		Where("agenda_id = ?", row.ID).
		Delete(&agendaEditorModel{}).Error; err != nil {
		return r.logError("agenda_repo_replace_editors_failed", err, "agenda_id", row.ID)
	}
	for _, editor := range agenda.Editors {
		editorRow := agendaEditorModel{AgendaID: row.ID, UserID: strings.TrimSpace(editor)}
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&editorRow).Error; err != nil {
			return r.logError("agenda_repo_add_editor_failed", err, "agenda_id", row.ID, "user_id", editorRow.UserID)
		}
	}
	return nil
}

func (r *Repository) GetAgendaVoteByPair(ctx context.Context, agendaID string, voteID string) (entities.AgendaVote, bool, error) {
	var row agendaVoteModel
	err := r.db.WithContext(ctx).
		Where("agenda_id = ?", strings.TrimSpace(agendaID)).
		Where("vote_id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AgendaVote{}, false, nil
		}
		return entities.AgendaVote{}, false, r.logError("agenda_repo_get_agendavote_failed", err,
			"agenda_id", strings.TrimSpace(agendaID),
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveAgendaVote(ctx context.Context, agendaVote entities.AgendaVote) error {
	row := agendaVoteModelFromEntity(agendaVote)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"reasoning":  row.Reasoning,
			"score":      row.Score,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrAgendaVoteConflict
		}
		return r.logError("agenda_repo_save_agendavote_failed", create.Error,
			"agenda_vote_id", row.ID,
			"agenda_id", row.AgendaID,
			"vote_id", row.VoteID,
		)
	}
	return nil
}

func (r *Repository) DeleteAgendaVote(ctx context.Context, agendaVoteID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agendaVoteID)).
		Delete(&agendaVoteModel{})
	if result.Error != nil {
		return r.logError("agenda_repo_delete_agendavote_failed", result.Error, "agenda_vote_id", strings.TrimSpace(agendaVoteID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAgendaVoteNotFound
	}
	return nil
}

func (r *Repository) ListAgendaVotes(ctx context.Context, agendaID string) ([]entities.AgendaVote, error) {
	var rows []agendaVoteModel
	if err := r.db.WithContext(ctx).
		Where("agenda_id = ?", strings.TrimSpace(agendaID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("agenda_repo_list_agendavotes_failed", err, "agenda_id", strings.TrimSpace(agendaID))
	}
	items := make([]entities.AgendaVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetProfile(ctx context.Context, userID string) (ports.Profile, bool, error) {
	var row profileModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Profile{}, false, nil
		}
		return ports.Profile{}, false, r.logError("agenda_repo_get_profile_failed", err, "user_id", strings.TrimSpace(userID))
	}

	var watcherRows []agendaWatcherModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", row.UserID).
		Order("agenda_id ASC").
		Find(&watcherRows).Error; err != nil {
		return ports.Profile{}, false, r.logError("agenda_repo_list_watched_failed", err, "user_id", row.UserID)
	}
	watched := make([]string, 0, len(watcherRows))
	for _, watcherRow := range watcherRows {
		watched = append(watched, watcherRow.AgendaID)
	}
	return ports.Profile{
		UserID:           row.UserID,
		Username:         row.Username,
		Email:            row.Email,
		Superuser:        row.Superuser,
		WatchedAgendaIDs: watched,
	}, true, nil
}

func (r *Repository) GetVote(ctx context.Context, voteID string) (ports.VoteProjection, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.VoteProjection{}, domainerrors.ErrVoteNotFound
		}
		return ports.VoteProjection{}, r.logError("agenda_repo_get_vote_failed", err, "vote_id", strings.TrimSpace(voteID))
	}
	return ports.VoteProjection{
		VoteID: row.ID,
		Title:  row.Title,
		Time:   row.Time.UTC(),
	}, nil
}

func (r *Repository) PresentVote(ctx context.Context, voteID string) (ports.VoteRepresentation, error) {
	vote, err := r.GetVote(ctx, voteID)
	if err != nil {
		return ports.VoteRepresentation{}, err
	}

	var rows []agendaVoteModel
	if err := r.db.WithContext(ctx).
		Where("vote_id = ?", vote.VoteID).
		Order("agenda_id ASC").
		Find(&rows).Error; err != nil {
		return ports.VoteRepresentation{}, r.logError("agenda_repo_present_vote_failed", err, "vote_id", vote.VoteID)
	}
	stances := make([]ports.VoteAgendaStance, 0, len(rows))
	for _, row := range rows {
		stances = append(stances, ports.VoteAgendaStance{
			AgendaID:  row.AgendaID,
			Score:     row.Score,
			Reasoning: row.Reasoning,
		})
	}
	return ports.VoteRepresentation{
		VoteID:  vote.VoteID,
		Title:   vote.Title,
		Time:    vote.Time,
		Agendas: stances,
	}, nil
}

func (r *Repository) SelectedMembers(ctx context.Context, agendaID string, top int, bottom int) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	return r.selectedInstances(ctx, &memberRankingModel{}, agendaID, top, bottom, "agenda_repo_selected_members_failed")
}

func (r *Repository) SelectedParties(ctx context.Context, agendaID string, top int, bottom int) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	return r.selectedInstances(ctx, &partyRankingModel{}, agendaID, top, bottom, "agenda_repo_selected_parties_failed")
}

func (r *Repository) selectedInstances(
	ctx context.Context,
	model any,
	agendaID string,
	top int,
	bottom int,
	event string,
) ([]ports.RankedInstance, []ports.RankedInstance, error) {
	var topRows []rankingRow
	err := r.db.WithContext(ctx).
		Model(model).
		Where("agenda_id = ?", strings.TrimSpace(agendaID)).
		Order("score DESC, instance_id ASC").
		Limit(top).
		Scan(&topRows).
		Error
	if err != nil {
		if isUndefinedTable(err) {
			// Ranking projections are rebuilt out of band and may be absent
			// in local development; detail pages render without them.
			return nil, nil, nil
		}
		return nil, nil, r.logError(event, err, "agenda_id", strings.TrimSpace(agendaID))
	}

	var bottomRows []rankingRow
	err = r.db.WithContext(ctx).
		Model(model).
		Where("agenda_id = ?", strings.TrimSpace(agendaID)).
		Order("score ASC, instance_id ASC").
		Limit(bottom).
		Scan(&bottomRows).
		Error
	if err != nil {
		return nil, nil, r.logError(event, err, "agenda_id", strings.TrimSpace(agendaID))
	}
	// Bottom rows come back worst-first; flip them so both lists read
	// best-to-worst.
	for i, j := 0, len(bottomRows)-1; i < j; i, j = i+1, j-1 {
		bottomRows[i], bottomRows[j] = bottomRows[j], bottomRows[i]
	}
	return toRankedInstances(topRows), toRankedInstances(bottomRows), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "civic-data/agenda-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("agenda repository operation failed", fields...)
	return err
}

func (r *Repository) withEditors(ctx context.Context, row agendaModel) (entities.Agenda, error) {
	var editorRows []agendaEditorModel
	if err := r.db.WithContext(ctx).
		Where("agenda_id = ?", row.ID).
		Order("user_id ASC").
		Find(&editorRows).Error; err != nil {
		return entities.Agenda{}, r.logError("agenda_repo_list_editors_failed", err, "agenda_id", row.ID)
	}
	editors := make([]string, 0, len(editorRows))
	for _, editorRow := range editorRows {
		editors = append(editors, editorRow.UserID)
	}
	agenda := row.toEntity()
	agenda.Editors = editors
	return agenda, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type agendaModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	Name            string    `gorm:"column:name"`
	PublicOwnerName string    `gorm:"column:public_owner_name"`
	Description     string    `gorm:"column:description"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (agendaModel) TableName() string {
	return "agendas"
}

func agendaModelFromEntity(agenda entities.Agenda) agendaModel {
	row := agendaModel{
		ID:              strings.TrimSpace(agenda.AgendaID),
		Name:            strings.TrimSpace(agenda.Name),
		PublicOwnerName: strings.TrimSpace(agenda.PublicOwnerName),
		Description:     strings.TrimSpace(agenda.Description),
		CreatedAt:       agenda.CreatedAt.UTC(),
		UpdatedAt:       agenda.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m agendaModel) toEntity() entities.Agenda {
	return entities.Agenda{
		AgendaID:        m.ID,
		Name:            m.Name,
		PublicOwnerName: m.PublicOwnerName,
		Description:     m.Description,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type agendaEditorModel struct {
	AgendaID string `gorm:"column:agenda_id;primaryKey"`
	UserID   string `gorm:"column:user_id;primaryKey"`
}

func (agendaEditorModel) TableName() string {
	return "agenda_editors"
}

type agendaVoteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AgendaID  string    `gorm:"column:agenda_id"`
	VoteID    string    `gorm:"column:vote_id"`
	Reasoning string    `gorm:"column:reasoning"`
	Score     float64   `gorm:"column:score"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (agendaVoteModel) TableName() string {
	return "agenda_votes"
}

func agendaVoteModelFromEntity(agendaVote entities.AgendaVote) agendaVoteModel {
	row := agendaVoteModel{
		ID:        strings.TrimSpace(agendaVote.AgendaVoteID),
		AgendaID:  strings.TrimSpace(agendaVote.AgendaID),
		VoteID:    strings.TrimSpace(agendaVote.VoteID),
		Reasoning: agendaVote.Reasoning,
		Score:     agendaVote.Score,
		CreatedAt: agendaVote.CreatedAt.UTC(),
		UpdatedAt: agendaVote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m agendaVoteModel) toEntity() entities.AgendaVote {
	return entities.AgendaVote{
		AgendaVoteID: m.ID,
		AgendaID:     m.AgendaID,
		VoteID:       m.VoteID,
		Reasoning:    m.Reasoning,
		Score:        m.Score,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type agendaWatcherModel struct {
	UserID   string `gorm:"column:user_id;primaryKey"`
	AgendaID string `gorm:"column:agenda_id;primaryKey"`
}

func (agendaWatcherModel) TableName() string {
	return "agenda_watchers"
}

type profileModel struct {
	UserID    string `gorm:"column:user_id;primaryKey"`
	Username  string `gorm:"column:username"`
	Email     string `gorm:"column:email"`
	Superuser bool   `gorm:"column:superuser"`
}

func (profileModel) TableName() string {
	return "profiles"
}

type voteModel struct {
	ID    string    `gorm:"column:id;primaryKey"`
	Title string    `gorm:"column:title"`
	Time  time.Time `gorm:"column:time"`
}

func (voteModel) TableName() string {
	return "votes"
}

type rankingRow struct {
	InstanceID string  `gorm:"column:instance_id"`
	Name       string  `gorm:"column:name"`
	Score      float64 `gorm:"column:score"`
}

type memberRankingModel struct {
	AgendaID   string  `gorm:"column:agenda_id;primaryKey"`
	InstanceID string  `gorm:"column:instance_id;primaryKey"`
	Name       string  `gorm:"column:name"`
	Score      float64 `gorm:"column:score"`
}

func (memberRankingModel) TableName() string {
	return "agenda_member_rankings"
}

type partyRankingModel struct {
	AgendaID   string  `gorm:"column:agenda_id;primaryKey"`
	InstanceID string  `gorm:"column:instance_id;primaryKey"`
	Name       string  `gorm:"column:name"`
	Score      float64 `gorm:"column:score"`
}

func (partyRankingModel) TableName() string {
	return "agenda_party_rankings"
}

func toRankedInstances(rows []rankingRow) []ports.RankedInstance {
	items := make([]ports.RankedInstance, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.RankedInstance{
			ID:    row.InstanceID,
			Name:  row.Name,
			Score: row.Score,
		})
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

var _ ports.AgendaRepository = (*Repository)(nil)
var _ ports.AgendaVoteRepository = (*Repository)(nil)
var _ ports.ProfileRepository = (*Repository)(nil)
var _ ports.VoteCatalog = (*Repository)(nil)
var _ ports.RankingSource = (*Repository)(nil)

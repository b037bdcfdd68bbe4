package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

type appEventRow struct {
	ID          string         `db:"id"`
	Level       string         `db:"level"`
	Message     string         `db:"message"`
	RelatedType string         `db:"related_type"`
	RelatedID   string         `db:"related_id"`
	UserID      sql.NullString `db:"user_id"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r appEventRow) toDomain() domain.AppEvent {
	return domain.AppEvent{
		ID:          r.ID,
		Level:       domain.EventLevel(r.Level),
		Message:     r.Message,
		RelatedType: r.RelatedType,
		RelatedID:   r.RelatedID,
		UserID:      mapNullString(r.UserID),
		CreatedAt:   r.CreatedAt,
	}
}

type appEventsRepo struct {
	q sqlx.ExtContext
}

func (r *appEventsRepo) CreateAppEvent(ctx context.Context, e domain.AppEvent) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err := sqlx.NamedExecContext(ctx, r.q, `
		INSERT INTO app_events (id, level, message, related_type, related_id, user_id, created_at)
		VALUES (:id, :level, :message, :related_type, :related_id, :user_id, :created_at)`,
		appEventRow{
			ID:          e.ID,
			Level:       string(e.Level),
			Message:     e.Message,
			RelatedType: e.RelatedType,
			RelatedID:   e.RelatedID,
			UserID:      mapStringNull(e.UserID),
			CreatedAt:   created.UTC(),
		})
	return mapWriteErr(err)
}

func (r *appEventsRepo) ListRecentAppEvents(ctx context.Context, limit int) ([]domain.AppEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []appEventRow
	err := sqlx.SelectContext(ctx, r.q, &rows, `
		SELECT id, level, message, related_type, related_id, user_id, created_at
		FROM app_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AppEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *appEventsRepo) DeleteAppEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM app_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

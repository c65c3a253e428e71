package postgres

import (
	"context"
	"database/sql"

	"docviewer/internal/model"
	"docviewer/internal/repository"
)

// ExtractionEventPostgres is a PostgreSQL implementation of repository.ExtractionEventRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ExtractionEventPostgres struct {
	db *sql.DB
}

// NewExtractionEventPostgres creates a new ExtractionEventPostgres repository.
func NewExtractionEventPostgres(db *sql.DB) *ExtractionEventPostgres {
	return &ExtractionEventPostgres{db: db}
}

var _ repository.ExtractionEventRepository = (*ExtractionEventPostgres)(nil)

// Record inserts one extraction event.
func (r *ExtractionEventPostgres) Record(ctx context.Context, ev *model.ExtractionEvent) error {
	const q = `
		INSERT INTO extraction_events (id, folder, document, backend, source, outcome, text_length, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, q,
		ev.ID,
		ev.Folder,
		ev.Document,
		ev.Backend,
		ev.Source,
		ev.Outcome,
		ev.TextLength,
		ev.DurationMs,
		ev.CreatedAt,
	)
	return err
}

// ListByDocument returns events for one document using LIMIT/OFFSET pagination and a total count.
func (r *ExtractionEventPostgres) ListByDocument(ctx context.Context, folder, document string, pq repository.PageQuery) (*repository.PageResult[model.ExtractionEvent], error) {
	const qCount = `SELECT COUNT(*) FROM extraction_events WHERE folder = $1 AND document = $2`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, folder, document).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, folder, document, backend, source, outcome, text_length, duration_ms, created_at
		FROM extraction_events
		WHERE folder = $1 AND document = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, folder, document, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ExtractionEvent, 0)
	for rows.Next() {
		var ev model.ExtractionEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.Folder,
			&ev.Document,
			&ev.Backend,
			&ev.Source,
			&ev.Outcome,
			&ev.TextLength,
			&ev.DurationMs,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ExtractionEvent]{
		Items: items,
		Total: total,
	}, nil
}

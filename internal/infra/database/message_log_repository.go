package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type MessageLogRepository struct {
	DB *sql.DB
}

func NewMessageLogRepository(db *sql.DB) *MessageLogRepository {
	return &MessageLogRepository{DB: db}
}

const messageColumns = `id, lead_id, template_id, external_id, content, status, sent_at`

func (r *MessageLogRepository) Create(ctx context.Context, m *entity.MessageLog) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO message_logs (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.LeadID, nullString(m.TemplateID), nullString(m.ExternalID), m.Content, m.Status, m.SentAt,
	)
	if err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

func scanMessage(row interface{ Scan(...any) error }) (*entity.MessageLog, error) {
	var (
		m                      entity.MessageLog
		templateID, externalID sql.NullString
	)
	if err := row.Scan(&m.ID, &m.LeadID, &templateID, &externalID, &m.Content, &m.Status, &m.SentAt); err != nil {
		return nil, err
	}
	m.TemplateID = stringOrEmpty(templateID)
	m.ExternalID = stringOrEmpty(externalID)
	return &m, nil
}

func (r *MessageLogRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.MessageLog, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+messageColumns+` FROM message_logs WHERE lead_id = $1 ORDER BY sent_at`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list message logs: %w", err)
	}
	defer rows.Close()

	out := []*entity.MessageLog{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MessageLogRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.MessageLog, error) {
	m, err := scanMessage(r.DB.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM message_logs WHERE external_id = $1`, externalID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrMessageLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select message log: %w", err)
	}
	return m, nil
}

func (r *MessageLogRepository) UpdateStatus(ctx context.Context, id string, status entity.MessageStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE message_logs SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	return requireAffected(res, entity.ErrMessageLogNotFound)
}

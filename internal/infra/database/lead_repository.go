package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, quiz_id, assigned_user_id, name, phone, email, status, answers,
	utm_source, utm_medium, utm_campaign, notes, version, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead, history ...*entity.LeadHistory) error {
	answers, err := json.Marshal(l.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO leads (`+leadColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			l.ID,
			nullString(l.QuizID),
			nullString(l.AssignedUserID),
			l.Name,
			l.Phone,
			nullString(l.Email),
			l.Status,
			string(answers),
			nullString(l.UTM.Source),
			nullString(l.UTM.Medium),
			nullString(l.UTM.Campaign),
			l.Notes,
			l.Version,
			l.CreatedAt,
			l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}
		return insertHistory(ctx, tx, history)
	})
}

// Update writes the mutable columns and appends history in the same
// transaction. The row must still be at l.Version; otherwise nothing is
// written and entity.ErrLeadConflict is returned.
func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead, history ...*entity.LeadHistory) error {
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE leads
			SET assigned_user_id = $2, status = $3, notes = $4, updated_at = $5, version = version + 1
			WHERE id = $1 AND version = $6`,
			l.ID, nullString(l.AssignedUserID), l.Status, l.Notes, l.UpdatedAt, l.Version,
		)
		if err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return leadMissingOrStale(ctx, tx, l.ID)
		}
		return insertHistory(ctx, tx, history)
	})
	if err != nil {
		return err
	}
	l.Version++
	return nil
}

func leadMissingOrStale(ctx context.Context, tx *sql.Tx, id string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check lead: %w", err)
	}
	if !exists {
		return entity.ErrLeadNotFound
	}
	return entity.ErrLeadConflict
}

func insertHistory(ctx context.Context, tx *sql.Tx, history []*entity.LeadHistory) error {
	for _, h := range history {
		if h == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO lead_history (id, lead_id, user_id, action, from_status, to_status, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			h.ID,
			h.LeadID,
			nullString(h.UserID),
			h.Action,
			nullString(string(h.FromStatus)),
			nullString(string(h.ToStatus)),
			nullString(h.Note),
			h.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert lead history: %w", err)
		}
	}
	return nil
}

func scanLead(row interface{ Scan(...any) error }) (*entity.Lead, error) {
	var (
		l                                 entity.Lead
		quizID, assigned, email           sql.NullString
		utmSource, utmMedium, utmCampaign sql.NullString
		answers                           []byte
	)
	err := row.Scan(
		&l.ID,
		&quizID,
		&assigned,
		&l.Name,
		&l.Phone,
		&email,
		&l.Status,
		&answers,
		&utmSource,
		&utmMedium,
		&utmCampaign,
		&l.Notes,
		&l.Version,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.QuizID = stringOrEmpty(quizID)
	l.AssignedUserID = stringOrEmpty(assigned)
	l.Email = stringOrEmpty(email)
	l.UTM = entity.UTM{
		Source:   stringOrEmpty(utmSource),
		Medium:   stringOrEmpty(utmMedium),
		Campaign: stringOrEmpty(utmCampaign),
	}
	l.Answers = []entity.Answer{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &l.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	return &l, nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	l, err := scanLead(r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) List(ctx context.Context, filter usecase.LeadFilter) ([]*entity.Lead, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AssignedUserID != "" {
		args = append(args, filter.AssignedUserID)
		where = append(where, fmt.Sprintf("assigned_user_id = $%d", len(args)))
	}
	if filter.Unassigned {
		where = append(where, "assigned_user_id IS NULL")
	}
	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *LeadRepository) FindStale(ctx context.Context, status entity.KanbanStatus, before time.Time) ([]*entity.Lead, error) {
	return r.query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at`, status, before)
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []*entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *LeadRepository) History(ctx context.Context, leadID string) ([]*entity.LeadHistory, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, user_id, action, from_status, to_status, note, created_at
		FROM lead_history
		WHERE lead_id = $1
		ORDER BY created_at, id`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list lead history: %w", err)
	}
	defer rows.Close()

	out := []*entity.LeadHistory{}
	for rows.Next() {
		var (
			h                      entity.LeadHistory
			userID, from, to, note sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.LeadID, &userID, &h.Action, &from, &to, &note, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.UserID = stringOrEmpty(userID)
		h.FromStatus = entity.KanbanStatus(stringOrEmpty(from))
		h.ToStatus = entity.KanbanStatus(stringOrEmpty(to))
		h.Note = stringOrEmpty(note)
		out = append(out, &h)
	}
	return out, rows.Err()
}

// CountByStatus groups leads by status, optionally only those of one seller.
func (r *LeadRepository) CountByStatus(ctx context.Context, assignedUserID string) (map[entity.KanbanStatus]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM leads
		WHERE $1 = '' OR assigned_user_id::text = $1
		GROUP BY status`, assignedUserID)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	out := make(map[entity.KanbanStatus]int)
	for rows.Next() {
		var (
			status entity.KanbanStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *LeadRepository) CountByUser(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT assigned_user_id, COUNT(*) FROM leads
		WHERE assigned_user_id IS NOT NULL
		GROUP BY assigned_user_id`)
	if err != nil {
		return nil, fmt.Errorf("count leads by user: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			userID string
			n      int
		)
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, err
		}
		out[userID] = n
	}
	return out, rows.Err()
}

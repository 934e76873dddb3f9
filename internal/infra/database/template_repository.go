package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type TemplateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func clearDefault(ctx context.Context, tx *sql.Tx, t *entity.MessageTemplate) error {
	if !t.IsDefault {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE message_templates SET is_default = FALSE WHERE is_default AND id <> $1`, t.ID); err != nil {
		return fmt.Errorf("clear default template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) Create(ctx context.Context, t *entity.MessageTemplate) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := clearDefault(ctx, tx, t); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO message_templates (id, name, content, is_default, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.Name, t.Content, t.IsDefault, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert template: %w", err)
		}
		return nil
	})
}

func (r *TemplateRepository) Update(ctx context.Context, t *entity.MessageTemplate) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := clearDefault(ctx, tx, t); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE message_templates SET name = $2, content = $3, is_default = $4
			WHERE id = $1`,
			t.ID, t.Name, t.Content, t.IsDefault,
		)
		if err != nil {
			return fmt.Errorf("update template: %w", err)
		}
		return requireAffected(res, entity.ErrTemplateNotFound)
	})
}

func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM message_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(res, entity.ErrTemplateNotFound)
}

const templateColumns = `id, name, content, is_default, created_at`

func scanTemplate(row interface{ Scan(...any) error }) (*entity.MessageTemplate, error) {
	var t entity.MessageTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Content, &t.IsDefault, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TemplateRepository) findOne(ctx context.Context, query string, args ...any) (*entity.MessageTemplate, error) {
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select template: %w", err)
	}
	return t, nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*entity.MessageTemplate, error) {
	return r.findOne(ctx, `SELECT `+templateColumns+` FROM message_templates WHERE id = $1`, id)
}

func (r *TemplateRepository) FindDefault(ctx context.Context) (*entity.MessageTemplate, error) {
	return r.findOne(ctx, `SELECT `+templateColumns+` FROM message_templates WHERE is_default LIMIT 1`)
}

func (r *TemplateRepository) List(ctx context.Context) ([]*entity.MessageTemplate, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+templateColumns+` FROM message_templates ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := []*entity.MessageTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

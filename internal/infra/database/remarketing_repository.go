package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type RemarketingRepository struct {
	DB *sql.DB
}

func NewRemarketingRepository(db *sql.DB) *RemarketingRepository {
	return &RemarketingRepository{DB: db}
}

const ruleColumns = `id, name, trigger_status, days_without_activity, template_id, is_active, created_at`

func (r *RemarketingRepository) Create(ctx context.Context, rule *entity.RemarketingRule) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO remarketing_rules (`+ruleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rule.ID, rule.Name, rule.TriggerStatus, rule.DaysWithoutActivity, rule.TemplateID, rule.IsActive, rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert remarketing rule: %w", err)
	}
	return nil
}

func (r *RemarketingRepository) Update(ctx context.Context, rule *entity.RemarketingRule) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE remarketing_rules
		SET name = $2, trigger_status = $3, days_without_activity = $4, template_id = $5, is_active = $6
		WHERE id = $1`,
		rule.ID, rule.Name, rule.TriggerStatus, rule.DaysWithoutActivity, rule.TemplateID, rule.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update remarketing rule: %w", err)
	}
	return requireAffected(res, entity.ErrRuleNotFound)
}

func (r *RemarketingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM remarketing_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete remarketing rule: %w", err)
	}
	return requireAffected(res, entity.ErrRuleNotFound)
}

func scanRule(row interface{ Scan(...any) error }) (*entity.RemarketingRule, error) {
	var rule entity.RemarketingRule
	err := row.Scan(&rule.ID, &rule.Name, &rule.TriggerStatus, &rule.DaysWithoutActivity, &rule.TemplateID, &rule.IsActive, &rule.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *RemarketingRepository) FindByID(ctx context.Context, id string) (*entity.RemarketingRule, error) {
	rule, err := scanRule(r.DB.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM remarketing_rules WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select remarketing rule: %w", err)
	}
	return rule, nil
}

func (r *RemarketingRepository) List(ctx context.Context) ([]*entity.RemarketingRule, error) {
	return r.query(ctx, `SELECT `+ruleColumns+` FROM remarketing_rules ORDER BY created_at`)
}

func (r *RemarketingRepository) ListActive(ctx context.Context) ([]*entity.RemarketingRule, error) {
	return r.query(ctx, `SELECT `+ruleColumns+` FROM remarketing_rules WHERE is_active ORDER BY created_at`)
}

func (r *RemarketingRepository) query(ctx context.Context, query string) ([]*entity.RemarketingRule, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list remarketing rules: %w", err)
	}
	defer rows.Close()

	out := []*entity.RemarketingRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ClaimDispatch relies on the (lead_id, rule_id) primary key: a second claim
// inserts nothing.
func (r *RemarketingRepository) ClaimDispatch(ctx context.Context, leadID, ruleID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO remarketing_dispatches (lead_id, rule_id, dispatched_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (lead_id, rule_id) DO NOTHING`, leadID, ruleID)
	if err != nil {
		return false, fmt.Errorf("claim dispatch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RemarketingRepository) ReleaseDispatch(ctx context.Context, leadID, ruleID string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM remarketing_dispatches WHERE lead_id = $1 AND rule_id = $2`, leadID, ruleID); err != nil {
		return fmt.Errorf("release dispatch: %w", err)
	}
	return nil
}

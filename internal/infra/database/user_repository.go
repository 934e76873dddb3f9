package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

var errPhoneTaken = entity.ValidationError{Field: "phone", Message: "already registered"}

const userColumns = `id, name, phone, email, password_hash, role, whatsapp_status,
	daily_lead_limit, leads_received_today, priority, created_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID,
		u.Name,
		nullString(u.Phone),
		nullString(u.Email),
		nullString(u.PasswordHash),
		u.Role,
		u.WhatsAppStatus,
		u.DailyLeadLimit,
		u.LeadsReceivedToday,
		u.Priority,
		u.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update never touches leads_received_today; only reservations move it.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, daily_lead_limit = $4, priority = $5
		WHERE id = $1`,
		u.ID, u.Name, nullString(u.Phone), u.DailyLeadLimit, u.Priority,
	)
	if isUniqueViolation(err) {
		return errPhoneTaken
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, entity.ErrUserNotFound)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, entity.ErrUserNotFound)
}

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var (
		u                  entity.User
		phone, email, hash sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&phone,
		&email,
		&hash,
		&u.Role,
		&u.WhatsAppStatus,
		&u.DailyLeadLimit,
		&u.LeadsReceivedToday,
		&u.Priority,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Phone = stringOrEmpty(phone)
	u.Email = stringOrEmpty(email)
	u.PasswordHash = stringOrEmpty(hash)
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*entity.User, error) {
	return r.findOne(ctx, "phone = $1", phone)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
}

func (r *UserRepository) ListSellers(ctx context.Context) ([]*entity.User, error) {
	return r.query(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'user' ORDER BY created_at, id`)
}

func (r *UserRepository) query(ctx context.Context, query string, args ...any) ([]*entity.User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ReserveLead bumps the daily counter in a single guarded UPDATE, so two
// concurrent submissions can never push a seller past the limit.
func (r *UserRepository) ReserveLead(ctx context.Context, userID string, respectLimit bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET leads_received_today = leads_received_today + 1
		WHERE id = $1 AND role = 'user'
		  AND (NOT $2 OR leads_received_today < daily_lead_limit)`,
		userID, respectLimit,
	)
	if err != nil {
		return false, fmt.Errorf("reserve lead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *UserRepository) ReleaseLead(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE users
		SET leads_received_today = leads_received_today - 1
		WHERE id = $1 AND leads_received_today > 0`, userID)
	if err != nil {
		return fmt.Errorf("release lead: %w", err)
	}
	return nil
}

func (r *UserRepository) SetWhatsAppStatus(ctx context.Context, id string, status entity.WhatsAppStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET whatsapp_status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update whatsapp status: %w", err)
	}
	return requireAffected(res, entity.ErrUserNotFound)
}

func (r *UserRepository) ResetDailyCounters(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET leads_received_today = 0 WHERE leads_received_today > 0`)
	if err != nil {
		return 0, fmt.Errorf("reset daily counters: %w", err)
	}
	return res.RowsAffected()
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

// QuizRepository stores a quiz as an aggregate: the quizzes row plus its
// steps and questions, always written together.
type QuizRepository struct {
	DB *sql.DB
}

func NewQuizRepository(db *sql.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(ctx context.Context, q *entity.Quiz) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (id, title, description, slug, is_published, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.Title, q.Description, q.Slug, q.IsPublished, q.CreatedAt, q.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return entity.ErrSlugTaken
		}
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		return insertSteps(ctx, tx, q)
	})
}

func (r *QuizRepository) Save(ctx context.Context, q *entity.Quiz) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE quizzes
			SET title = $2, description = $3, slug = $4, is_published = $5, updated_at = $6
			WHERE id = $1`,
			q.ID, q.Title, q.Description, q.Slug, q.IsPublished, q.UpdatedAt,
		)
		if isUniqueViolation(err) {
			return entity.ErrSlugTaken
		}
		if err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		if err := requireAffected(res, entity.ErrQuizNotFound); err != nil {
			return err
		}
		// questions go with their steps (ON DELETE CASCADE)
		if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_steps WHERE quiz_id = $1`, q.ID); err != nil {
			return fmt.Errorf("clear steps: %w", err)
		}
		return insertSteps(ctx, tx, q)
	})
}

func insertSteps(ctx context.Context, tx *sql.Tx, q *entity.Quiz) error {
	for _, st := range q.Steps {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quiz_steps (id, quiz_id, step_order, title)
			VALUES ($1, $2, $3, $4)`,
			st.ID, q.ID, st.Order, st.Title,
		); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
		for _, qq := range st.Questions {
			options, err := json.Marshal(qq.Options)
			if err != nil {
				return err
			}
			var cond *string
			if qq.Conditional != nil {
				raw, err := json.Marshal(qq.Conditional)
				if err != nil {
					return err
				}
				cond = nullString(string(raw))
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quiz_questions (id, step_id, question_order, type, question, required, options, conditional_logic)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				qq.ID, st.ID, qq.Order, qq.Type, qq.Prompt, qq.Required, string(options), cond,
			); err != nil {
				return fmt.Errorf("insert question: %w", err)
			}
		}
	}
	return nil
}

const quizColumns = `id, title, description, slug, is_published, created_at, updated_at`

func scanQuiz(row interface{ Scan(...any) error }) (*entity.Quiz, error) {
	var q entity.Quiz
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Slug, &q.IsPublished, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) findOne(ctx context.Context, where string, arg any) (*entity.Quiz, error) {
	q, err := scanQuiz(r.DB.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE `+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select quiz: %w", err)
	}
	if err := r.loadSteps(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*entity.Quiz, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *QuizRepository) FindBySlug(ctx context.Context, slug string) (*entity.Quiz, error) {
	return r.findOne(ctx, "slug = $1", slug)
}

func (r *QuizRepository) Revision(ctx context.Context, slug string) (usecase.QuizRevision, error) {
	var rev usecase.QuizRevision
	err := r.DB.QueryRowContext(ctx, `SELECT is_published, updated_at FROM quizzes WHERE slug = $1`, slug).
		Scan(&rev.IsPublished, &rev.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return rev, entity.ErrQuizNotFound
	}
	if err != nil {
		return rev, fmt.Errorf("select quiz revision: %w", err)
	}
	return rev, nil
}

// List returns quizzes without their steps, newest first.
func (r *QuizRepository) List(ctx context.Context) ([]*entity.Quiz, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+quizColumns+` FROM quizzes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return requireAffected(res, entity.ErrQuizNotFound)
}

func (r *QuizRepository) loadSteps(ctx context.Context, q *entity.Quiz) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT s.id, s.step_order, s.title,
		       qq.id, qq.question_order, qq.type, qq.question, qq.required, qq.options, qq.conditional_logic
		FROM quiz_steps s
		LEFT JOIN quiz_questions qq ON qq.step_id = s.id
		WHERE s.quiz_id = $1
		ORDER BY s.step_order, qq.question_order`, q.ID)
	if err != nil {
		return fmt.Errorf("load steps: %w", err)
	}
	defer rows.Close()

	q.Steps = nil
	var current *entity.QuizStep
	for rows.Next() {
		var (
			stepID, stepTitle   string
			stepOrder           int
			qID, qType, qPrompt sql.NullString
			qOrder              sql.NullInt64
			qRequired           sql.NullBool
			options, cond       []byte
		)
		if err := rows.Scan(&stepID, &stepOrder, &stepTitle, &qID, &qOrder, &qType, &qPrompt, &qRequired, &options, &cond); err != nil {
			return err
		}
		if current == nil || current.ID != stepID {
			q.Steps = append(q.Steps, &entity.QuizStep{ID: stepID, QuizID: q.ID, Order: stepOrder, Title: stepTitle})
			current = q.Steps[len(q.Steps)-1]
		}
		if !qID.Valid {
			continue
		}
		question := &entity.QuizQuestion{
			ID:       qID.String,
			StepID:   stepID,
			Order:    int(qOrder.Int64),
			Type:     entity.QuestionType(qType.String),
			Prompt:   qPrompt.String,
			Required: qRequired.Bool,
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &question.Options); err != nil {
				return fmt.Errorf("decode options: %w", err)
			}
		}
		if len(cond) > 0 {
			question.Conditional = &entity.ConditionalLogic{}
			if err := json.Unmarshal(cond, question.Conditional); err != nil {
				return fmt.Errorf("decode conditional logic: %w", err)
			}
		}
		current.Questions = append(current.Questions, question)
	}
	return rows.Err()
}

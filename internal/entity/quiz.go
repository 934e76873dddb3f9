package entity

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Quiz struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Slug        string      `json:"slug"`
	IsPublished bool        `json:"is_published"`
	Steps       []*QuizStep `json:"steps"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type QuizStep struct {
	ID        string          `json:"id"`
	QuizID    string          `json:"quiz_id"`
	Order     int             `json:"order"`
	Title     string          `json:"title"`
	Questions []*QuizQuestion `json:"questions"`
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases the title, turns whitespace runs into hyphens and strips
// everything outside [a-z0-9-].
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	if s == "" {
		return "quiz"
	}
	return s
}

func NewQuiz(title, description string) (*Quiz, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ValidationError{"title", "is required"}
	}
	now := time.Now()
	return &Quiz{
		ID:          uuid.New().String(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Slug:        Slugify(title),
		Steps:       []*QuizStep{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (q *Quiz) Rename(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{"title", "is required"}
	}
	q.Title = title
	q.Description = strings.TrimSpace(description)
	q.touch()
	return nil
}

func (q *Quiz) SetPublished(published bool) {
	q.IsPublished = published
	q.touch()
}

func (q *Quiz) touch() { q.UpdatedAt = time.Now() }

// AddStep appends a step at order len+1.
func (q *Quiz) AddStep(title string) *QuizStep {
	order := len(q.Steps) + 1
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("Etapa %d", order)
	}
	step := &QuizStep{
		ID:        uuid.New().String(),
		QuizID:    q.ID,
		Order:     order,
		Title:     title,
		Questions: []*QuizQuestion{},
	}
	q.Steps = append(q.Steps, step)
	q.touch()
	return step
}

func (q *Quiz) StepIndex(stepID string) int {
	for i, s := range q.Steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

func (q *Quiz) Step(stepID string) (*QuizStep, error) {
	i := q.StepIndex(stepID)
	if i < 0 {
		return nil, ErrStepNotFound
	}
	return q.Steps[i], nil
}

// locate returns the step and question positions of a question, or -1, -1.
func (q *Quiz) locate(questionID string) (int, int) {
	for si, s := range q.Steps {
		for qi, qq := range s.Questions {
			if qq.ID == questionID {
				return si, qi
			}
		}
	}
	return -1, -1
}

func (q *Quiz) Question(questionID string) (*QuizQuestion, error) {
	si, qi := q.locate(questionID)
	if si < 0 {
		return nil, ErrQuestionNotFound
	}
	return q.Steps[si].Questions[qi], nil
}

func (q *Quiz) RenameStep(stepID, title string) error {
	step, err := q.Step(stepID)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{"title", "is required"}
	}
	step.Title = title
	q.touch()
	return nil
}

// ReorderSteps applies a new step order. ids must be a permutation of the
// current step ids, and conditional references must still point backwards.
func (q *Quiz) ReorderSteps(ids []string) error {
	if len(ids) != len(q.Steps) {
		return ValidationError{"step_ids", "must list every step exactly once"}
	}
	byID := make(map[string]*QuizStep, len(q.Steps))
	for _, s := range q.Steps {
		byID[s.ID] = s
	}
	reordered := make([]*QuizStep, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok || seen[id] {
			return ValidationError{"step_ids", "must list every step exactly once"}
		}
		seen[id] = true
		reordered = append(reordered, s)
	}

	previous := q.Steps
	q.Steps = reordered
	if err := q.checkConditions(); err != nil {
		q.Steps = previous
		return err
	}
	q.renumberSteps()
	q.touch()
	return nil
}

// RemoveStep deletes a step with its questions and drops any condition that
// pointed at them.
func (q *Quiz) RemoveStep(stepID string) error {
	i := q.StepIndex(stepID)
	if i < 0 {
		return ErrStepNotFound
	}
	removed := q.Steps[i]
	q.Steps = append(q.Steps[:i:i], q.Steps[i+1:]...)

	gone := make(map[string]bool, len(removed.Questions))
	for _, qq := range removed.Questions {
		gone[qq.ID] = true
	}
	q.dropConditions(func(c *ConditionalLogic) bool {
		return gone[c.QuestionID] || c.TargetStepID == stepID
	})
	q.renumberSteps()
	q.touch()
	return nil
}

func (q *Quiz) AddQuestion(stepID string, question *QuizQuestion) error {
	step, err := q.Step(stepID)
	if err != nil {
		return err
	}
	question.StepID = step.ID
	question.Order = len(step.Questions) + 1
	step.Questions = append(step.Questions, question)
	if question.Conditional != nil {
		if err := q.checkCondition(question); err != nil {
			step.Questions = step.Questions[:len(step.Questions)-1]
			return err
		}
	}
	q.touch()
	return nil
}

func (q *Quiz) RemoveQuestion(stepID, questionID string) error {
	step, err := q.Step(stepID)
	if err != nil {
		return err
	}
	idx := -1
	for i, qq := range step.Questions {
		if qq.ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrQuestionNotFound
	}
	step.Questions = append(step.Questions[:idx:idx], step.Questions[idx+1:]...)
	for i, qq := range step.Questions {
		qq.Order = i + 1
	}
	q.dropConditions(func(c *ConditionalLogic) bool { return c.QuestionID == questionID })
	q.touch()
	return nil
}

// SetCondition attaches (or with nil, clears) conditional logic on a question.
func (q *Quiz) SetCondition(questionID string, cond *ConditionalLogic) error {
	question, err := q.Question(questionID)
	if err != nil {
		return err
	}
	previous := question.Conditional
	question.Conditional = cond
	if cond != nil {
		if err := q.checkCondition(question); err != nil {
			question.Conditional = previous
			return err
		}
	}
	q.touch()
	return nil
}

// checkCondition enforces that a condition references an earlier question and
// that a skip_to target lies after the question's own step.
func (q *Quiz) checkCondition(question *QuizQuestion) error {
	c := question.Conditional
	if err := c.Validate(); err != nil {
		return err
	}
	ownStep, ownPos := q.locate(question.ID)
	refStep, refPos := q.locate(c.QuestionID)
	if refStep < 0 {
		return ValidationError{"conditional_logic.question_id", "references an unknown question"}
	}
	if refStep > ownStep || (refStep == ownStep && refPos >= ownPos) {
		return ValidationError{"conditional_logic.question_id", "must reference an earlier question"}
	}
	if c.Action == ActionSkipTo {
		target := q.StepIndex(c.TargetStepID)
		if target < 0 {
			return ValidationError{"conditional_logic.target_step_id", "references an unknown step"}
		}
		if target <= ownStep {
			return ValidationError{"conditional_logic.target_step_id", "must be a later step"}
		}
	}
	return nil
}

func (q *Quiz) checkConditions() error {
	for _, s := range q.Steps {
		for _, qq := range s.Questions {
			if qq.Conditional == nil {
				continue
			}
			if err := q.checkCondition(qq); err != nil {
				return err
			}
		}
	}
	return nil
}

func (q *Quiz) dropConditions(match func(*ConditionalLogic) bool) {
	for _, s := range q.Steps {
		for _, qq := range s.Questions {
			if qq.Conditional != nil && match(qq.Conditional) {
				qq.Conditional = nil
			}
		}
	}
}

func (q *Quiz) renumberSteps() {
	for i, s := range q.Steps {
		s.Order = i + 1
	}
}

// Clone returns a deep copy so cached or stored quizzes are never shared.
func (q *Quiz) Clone() *Quiz {
	c := *q
	c.Steps = make([]*QuizStep, len(q.Steps))
	for i, s := range q.Steps {
		sc := *s
		sc.Questions = make([]*QuizQuestion, len(s.Questions))
		for j, qq := range s.Questions {
			qc := *qq
			if qq.Options != nil {
				qc.Options = append([]string(nil), qq.Options...)
			}
			if qq.Conditional != nil {
				cond := *qq.Conditional
				qc.Conditional = &cond
			}
			sc.Questions[j] = &qc
		}
		c.Steps[i] = &sc
	}
	return &c
}

package entity

import (
	"strings"

	"github.com/google/uuid"
)

type QuestionType string

const (
	QuestionText           QuestionType = "text"
	QuestionNumber         QuestionType = "number"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionYesNo          QuestionType = "yes_no"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionNumber, QuestionMultipleChoice, QuestionYesNo:
		return true
	}
	return false
}

type ConditionOperator string

const (
	OperatorEquals    ConditionOperator = "equals"
	OperatorNotEquals ConditionOperator = "not_equals"
	OperatorContains  ConditionOperator = "contains"
)

type ConditionAction string

const (
	ActionShow   ConditionAction = "show"
	ActionSkipTo ConditionAction = "skip_to"
)

// ConditionalLogic ties a question to the answer of an earlier question.
type ConditionalLogic struct {
	QuestionID   string            `json:"question_id"`
	Operator     ConditionOperator `json:"operator"`
	Value        string            `json:"value"`
	Action       ConditionAction   `json:"action"`
	TargetStepID string            `json:"target_step_id,omitempty"`
}

func (c ConditionalLogic) Validate() error {
	if strings.TrimSpace(c.QuestionID) == "" {
		return ValidationError{"conditional_logic.question_id", "is required"}
	}
	switch c.Operator {
	case OperatorEquals, OperatorNotEquals, OperatorContains:
	default:
		return ValidationError{"conditional_logic.operator", "must be equals, not_equals or contains"}
	}
	switch c.Action {
	case ActionShow:
		if c.TargetStepID != "" {
			return ValidationError{"conditional_logic.target_step_id", "only allowed with skip_to"}
		}
	case ActionSkipTo:
		if strings.TrimSpace(c.TargetStepID) == "" {
			return ValidationError{"conditional_logic.target_step_id", "is required for skip_to"}
		}
	default:
		return ValidationError{"conditional_logic.action", "must be show or skip_to"}
	}
	return nil
}

// Holds reports whether the condition is satisfied by value. An unanswered
// question never satisfies a condition.
func (c ConditionalLogic) Holds(value AnswerValue, answered bool) bool {
	if !answered || value.IsEmpty() {
		return false
	}
	got := strings.TrimSpace(value.String())
	want := strings.TrimSpace(c.Value)
	switch c.Operator {
	case OperatorEquals:
		return strings.EqualFold(got, want)
	case OperatorNotEquals:
		return !strings.EqualFold(got, want)
	case OperatorContains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	return false
}

type QuizQuestion struct {
	ID          string            `json:"id"`
	StepID      string            `json:"step_id"`
	Order       int               `json:"order"`
	Type        QuestionType      `json:"type"`
	Prompt      string            `json:"question"`
	Required    bool              `json:"required"`
	Options     []string          `json:"options,omitempty"`
	Conditional *ConditionalLogic `json:"conditional_logic,omitempty"`
}

// NewQuestion builds a question whose options are present only for
// multiple_choice, and there they must be non-empty.
func NewQuestion(t QuestionType, prompt string, required bool, options []string) (*QuizQuestion, error) {
	q := &QuizQuestion{ID: uuid.New().String(), Required: required}
	if err := q.Reshape(t, prompt, options); err != nil {
		return nil, err
	}
	return q, nil
}

// Reshape changes type, prompt and options together so the options
// invariant is checked against the final type.
func (q *QuizQuestion) Reshape(t QuestionType, prompt string, options []string) error {
	if t == "" {
		t = QuestionText
	}
	if !t.Valid() {
		return ValidationError{"type", "must be text, number, multiple_choice or yes_no"}
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ValidationError{"question", "is required"}
	}

	var cleaned []string
	if t == QuestionMultipleChoice {
		for _, o := range options {
			o = strings.TrimSpace(o)
			if o == "" {
				return ValidationError{"options", "must not contain empty values"}
			}
			cleaned = append(cleaned, o)
		}
		if len(cleaned) == 0 {
			return ValidationError{"options", "is required for multiple_choice"}
		}
	} else if len(options) > 0 {
		return ValidationError{"options", "only allowed for multiple_choice"}
	}

	q.Type = t
	q.Prompt = prompt
	q.Options = cleaned
	return nil
}

// Accepts reports whether v is a well-formed answer for the question type.
func (q *QuizQuestion) Accepts(v AnswerValue) bool {
	if v.IsEmpty() {
		return false
	}
	switch q.Type {
	case QuestionText:
		return v.Kind() == AnswerText
	case QuestionNumber:
		_, ok := v.Number()
		return ok
	case QuestionMultipleChoice:
		if v.Kind() != AnswerText {
			return false
		}
		s := strings.TrimSpace(v.String())
		for _, o := range q.Options {
			if o == s {
				return true
			}
		}
		return false
	case QuestionYesNo:
		_, ok := v.YesNo()
		return ok
	}
	return false
}

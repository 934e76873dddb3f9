package usecase

import (
	"sort"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

// Visibility is the outcome of evaluating a quiz's conditional logic against
// an answer set.
type Visibility struct {
	hidden  map[string]bool
	skipped map[string]bool
	next    []int
	path    []int
}

// Evaluate walks the quiz top to bottom. A show condition hides its question
// unless it holds; a skip_to condition that holds on a shown question sends
// the visitor to the target step after the current one. Answers of hidden or
// skipped questions never satisfy later conditions. Evaluate has no side effects.
func Evaluate(quiz *entity.Quiz, answers map[string]entity.AnswerValue) Visibility {
	v := Visibility{
		hidden:  make(map[string]bool),
		skipped: make(map[string]bool),
		next:    make([]int, len(quiz.Steps)),
	}
	effective := make(map[string]entity.AnswerValue, len(answers))
	for id, val := range answers {
		effective[id] = val
	}

	stepIndex := make(map[string]int, len(quiz.Steps))
	for i, s := range quiz.Steps {
		stepIndex[s.ID] = i
	}

	reached := 0
	for i, step := range quiz.Steps {
		v.next[i] = i + 1
		onPath := i == reached

		for _, q := range step.Questions {
			cond := q.Conditional
			if cond != nil && cond.Action == entity.ActionShow {
				val, ok := effective[cond.QuestionID]
				if !cond.Holds(val, ok) {
					v.hidden[q.ID] = true
				}
			}
			if !v.hidden[q.ID] && cond != nil && cond.Action == entity.ActionSkipTo && v.next[i] == i+1 {
				val, ok := effective[cond.QuestionID]
				if target, known := stepIndex[cond.TargetStepID]; known && target > i && cond.Holds(val, ok) {
					v.next[i] = target
				}
			}
			if !onPath {
				v.skipped[q.ID] = true
			}
			if v.hidden[q.ID] || !onPath {
				delete(effective, q.ID)
			}
		}

		if onPath {
			v.path = append(v.path, i)
			reached = v.next[i]
		}
	}
	return v
}

// Shown reports whether the question's own condition lets it render.
func (v Visibility) Shown(questionID string) bool { return !v.hidden[questionID] }

// Visible is Shown plus being on the path the answers lead through.
func (v Visibility) Visible(questionID string) bool {
	return !v.hidden[questionID] && !v.skipped[questionID]
}

// NextStep is the step index that follows stepIndex; len(steps) means done.
func (v Visibility) NextStep(stepIndex int) int {
	if stepIndex < 0 || stepIndex >= len(v.next) {
		return len(v.next)
	}
	return v.next[stepIndex]
}

// Path lists the step indexes the visitor goes through, in order.
func (v Visibility) Path() []int { return v.path }

// ValidateAnswers checks one step. It returns the ids of shown questions that
// are required but unanswered, or answered with a value of the wrong shape.
func ValidateAnswers(quiz *entity.Quiz, stepIndex int, answers []entity.Answer) ([]string, error) {
	if stepIndex < 0 || stepIndex >= len(quiz.Steps) {
		return nil, entity.ValidationError{Field: "step", Message: "out of range"}
	}
	set := entity.AnswerSet(answers)
	return missingInStep(quiz.Steps[stepIndex], set, Evaluate(quiz, set)), nil
}

func missingInStep(step *entity.QuizStep, set map[string]entity.AnswerValue, vis Visibility) []string {
	missing := []string{}
	for _, q := range step.Questions {
		if !vis.Shown(q.ID) {
			continue
		}
		val, ok := set[q.ID]
		if !ok || val.IsEmpty() {
			if q.Required {
				missing = append(missing, q.ID)
			}
			continue
		}
		if !q.Accepts(val) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// visibleAnswers keeps the answers of visible questions, in quiz order.
func visibleAnswers(quiz *entity.Quiz, set map[string]entity.AnswerValue, vis Visibility) []entity.Answer {
	kept := []entity.Answer{}
	for _, step := range quiz.Steps {
		for _, q := range step.Questions {
			if val, ok := set[q.ID]; ok && vis.Visible(q.ID) && !val.IsEmpty() {
				kept = append(kept, entity.Answer{QuestionID: q.ID, Value: val})
			}
		}
	}
	return kept
}

func unknownQuestions(quiz *entity.Quiz, answers []entity.Answer) []string {
	known := make(map[string]bool)
	for _, step := range quiz.Steps {
		for _, q := range step.Questions {
			known[q.ID] = true
		}
	}
	var unknown []string
	for _, a := range answers {
		if !known[a.QuestionID] {
			unknown = append(unknown, a.QuestionID)
		}
	}
	sort.Strings(unknown)
	return unknown
}

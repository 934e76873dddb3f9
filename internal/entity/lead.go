package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type UTM struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Campaign string `json:"campaign,omitempty"`
}

func (u UTM) IsZero() bool {
	return u.Source == "" && u.Medium == "" && u.Campaign == ""
}

type Lead struct {
	ID             string       `json:"id"`
	QuizID         string       `json:"quiz_id"`
	AssignedUserID string       `json:"assigned_user_id,omitempty"` // vazio enquanto não distribuído
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	Email          string       `json:"email,omitempty"`
	Status         KanbanStatus `json:"status"`
	Answers        []Answer     `json:"answers"`
	UTM            UTM          `json:"utm"`
	Notes          string       `json:"notes"`
	Version        int          `json:"version"` // sobe a cada alteração gravada
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type HistoryAction string

const (
	HistoryCreated       HistoryAction = "created"
	HistoryAssigned      HistoryAction = "assigned"
	HistoryStatusChanged HistoryAction = "status_changed"
	HistoryReopened      HistoryAction = "reopened"
	HistoryNotesUpdated  HistoryAction = "notes_updated"
)

type LeadHistory struct {
	ID         string        `json:"id"`
	LeadID     string        `json:"lead_id"`
	UserID     string        `json:"user_id,omitempty"`
	Action     HistoryAction `json:"action"`
	FromStatus KanbanStatus  `json:"from_status,omitempty"`
	ToStatus   KanbanStatus  `json:"to_status,omitempty"`
	Note       string        `json:"note,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewLead is the only way a lead comes to life: from a quiz submission, in
// status novo and unassigned.
func NewLead(quizID, name, phone, email string, answers []Answer, utm UTM) (*Lead, *LeadHistory, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return nil, nil, ValidationError{"name", "is required"}
	}
	if phone == "" {
		return nil, nil, ValidationError{"phone", "is required"}
	}
	if answers == nil {
		answers = []Answer{}
	}
	now := time.Now()
	lead := &Lead{
		ID:        uuid.New().String(),
		QuizID:    quizID,
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(email),
		Status:    StatusNovo,
		Answers:   answers,
		UTM:       utm,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return lead, lead.record(HistoryCreated, "", "", StatusNovo, ""), nil
}

func (l *Lead) IsAssigned() bool { return l.AssignedUserID != "" }

func (l *Lead) record(action HistoryAction, actorID string, from, to KanbanStatus, note string) *LeadHistory {
	return &LeadHistory{
		ID:         uuid.New().String(),
		LeadID:     l.ID,
		UserID:     actorID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		Note:       note,
		CreatedAt:  l.UpdatedAt,
	}
}

// TransitionTo moves the lead along the pipeline. Leaving fechado or perdido
// requires Reopen. Moving to the current status is a no-op and returns nil.
func (l *Lead) TransitionTo(to KanbanStatus, actorID, note string) (*LeadHistory, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	if to == l.Status {
		return nil, nil
	}
	if l.Status.IsTerminal() {
		return nil, ErrTerminalStatus
	}
	from := l.Status
	l.Status = to
	l.UpdatedAt = time.Now()
	return l.record(HistoryStatusChanged, actorID, from, to, strings.TrimSpace(note)), nil
}

// Reopen takes a lead out of a final status back into the open pipeline.
func (l *Lead) Reopen(to KanbanStatus, actorID, note string) (*LeadHistory, error) {
	if !to.Valid() || to.IsTerminal() {
		return nil, ErrInvalidStatus
	}
	if !l.Status.IsTerminal() {
		return nil, ValidationError{"status", "only leads in fechado or perdido can be reopened"}
	}
	from := l.Status
	l.Status = to
	l.UpdatedAt = time.Now()
	return l.record(HistoryReopened, actorID, from, to, strings.TrimSpace(note)), nil
}

func (l *Lead) SetNotes(text, actorID string) *LeadHistory {
	l.Notes = text
	l.UpdatedAt = time.Now()
	return l.record(HistoryNotesUpdated, actorID, "", "", "")
}

func (l *Lead) AssignTo(userID, actorID string) *LeadHistory {
	l.AssignedUserID = userID
	l.UpdatedAt = time.Now()
	return l.record(HistoryAssigned, actorID, "", "", userID)
}

// Answer returns the submitted value for a question.
func (l *Lead) Answer(questionID string) (AnswerValue, bool) {
	for _, a := range l.Answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return AnswerValue{}, false
}

package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

type SubmitInput struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Email   string          `json:"email"`
	Answers []entity.Answer `json:"answers"`
	UTM     entity.UTM      `json:"utm"`
}

type SubmitOutput struct {
	Lead     *entity.Lead              `json:"lead"`
	Assigned bool                      `json:"assigned"`
	Method   entity.DistributionMethod `json:"-"`
	Fallback bool                      `json:"-"`
	Seller   *entity.User              `json:"-"`
}

type StepValidation struct {
	OK       bool     `json:"ok"`
	Missing  []string `json:"missing"`
	NextStep int      `json:"next_step"`
}

type SubmissionUseCase struct {
	Quizzes     *QuizUseCase
	Leads       LeadRepository
	Settings    SettingsRepository
	Distributor *Distributor
	Events      LeadEventPublisher
	Logger      *zap.Logger
}

func NewSubmissionUseCase(
	quizzes *QuizUseCase,
	leads LeadRepository,
	settings SettingsRepository,
	distributor *Distributor,
	events LeadEventPublisher,
	logger *zap.Logger,
) *SubmissionUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionUseCase{
		Quizzes:     quizzes,
		Leads:       leads,
		Settings:    settings,
		Distributor: distributor,
		Events:      events,
		Logger:      logger,
	}
}

// ValidateStep is the gate between steps of the public form.
func (uc *SubmissionUseCase) ValidateStep(ctx context.Context, slug string, stepIndex int, answers []entity.Answer) (*StepValidation, error) {
	quiz, err := uc.Quizzes.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	missing, err := ValidateAnswers(quiz, stepIndex, answers)
	if err != nil {
		return nil, domainError(err, "")
	}
	vis := Evaluate(quiz, entity.AnswerSet(answers))
	return &StepValidation{
		OK:       len(missing) == 0,
		Missing:  missing,
		NextStep: vis.NextStep(stepIndex),
	}, nil
}

// Submit turns a completed public form into a lead. A lead nobody can take is
// still stored, unassigned, and the submit succeeds.
func (uc *SubmissionUseCase) Submit(ctx context.Context, slug string, in SubmitInput) (*SubmitOutput, error) {
	quiz, err := uc.Quizzes.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	phone, email, errs := validateContact(ContactInput{Name: in.Name, Phone: in.Phone, Email: in.Email})
	if unknown := unknownQuestions(quiz, in.Answers); len(unknown) > 0 {
		errs = append(errs, entity.ValidationError{Field: "answers", Message: "unknown questions: " + strings.Join(unknown, ", ")})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	// 1. Cada etapa do caminho visível precisa passar na validação
	set := entity.AnswerSet(in.Answers)
	vis := Evaluate(quiz, set)
	var missing []string
	for _, i := range vis.Path() {
		missing = append(missing, missingInStep(quiz.Steps[i], set, vis)...)
	}
	if len(missing) > 0 {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "validation failed: answers (missing or invalid: " + strings.Join(missing, ", ") + ")",
			Err:     entity.ValidationError{Field: "answers", Message: strings.Join(missing, ",")},
		}
	}

	lead, created, err := entity.NewLead(quiz.ID, in.Name, phone, email, visibleAnswers(quiz, set, vis), trimUTM(in.UTM))
	if err != nil {
		return nil, domainError(err, "")
	}
	history := []*entity.LeadHistory{created}

	settings, err := uc.Settings.Get(ctx)
	if err != nil {
		return nil, databaseError("failed to load settings", err)
	}

	out := &SubmitOutput{Lead: lead, Method: settings.DistributionMethod}

	// 2. Distribuição + persistência; a reserva é desfeita se o lead não for gravado
	txn := NewTransaction(uc.Logger)
	txn.AddOperation("assign_lead", func(ctx context.Context) error {
		assignment, err := uc.Distributor.Assign(ctx, settings)
		if errors.Is(err, entity.ErrNoEligibleUser) {
			uc.Logger.Warn("⚠️ lead sem vendedor elegível, aguardando atribuição manual",
				zap.String("lead_id", lead.ID),
				zap.String("method", string(settings.DistributionMethod)),
			)
			return nil
		}
		if err != nil {
			return err
		}
		history = append(history, lead.AssignTo(assignment.User.ID, ""))
		out.Assigned = true
		out.Fallback = assignment.Fallback
		out.Seller = assignment.User
		return nil
	}, func(ctx context.Context) error {
		if !out.Assigned {
			return nil
		}
		return uc.Distributor.Release(ctx, lead.AssignedUserID)
	})
	txn.AddOperation("create_lead", func(ctx context.Context) error {
		return uc.Leads.Create(ctx, lead, history...)
	}, nil)

	if err := txn.Execute(ctx); err != nil {
		var te *TechnicalError
		if errors.As(err, &te) {
			return nil, te
		}
		return nil, databaseError("failed to persist lead", err)
	}

	// 3. Evento; falha aqui não desfaz o lead
	if err := uc.Events.PublishLeadEvent(ctx, entity.NewLeadCreatedEvent(lead)); err != nil {
		uc.Logger.Error("⚠️ CRITICAL: lead gravado, mas falha ao publicar evento",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
	}

	uc.Logger.Info("lead recebido",
		zap.String("lead_id", lead.ID),
		zap.String("quiz_id", quiz.ID),
		zap.Bool("assigned", out.Assigned),
	)
	return out, nil
}

func trimUTM(u entity.UTM) entity.UTM {
	return entity.UTM{
		Source:   strings.TrimSpace(u.Source),
		Medium:   strings.TrimSpace(u.Medium),
		Campaign: strings.TrimSpace(u.Campaign),
	}
}

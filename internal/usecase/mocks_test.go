package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/quizlead-crm/internal/entity"
	"github.com/xavierca1/quizlead-crm/internal/infra/memory"
	"github.com/xavierca1/quizlead-crm/internal/usecase"
)

var (
	admin  = entity.Session{UserID: "admin-1", Role: entity.RoleAdmin}
	ctxBg  = context.Background()
	phones = []string{"+5511987654321", "+5511987654322", "+5511987654323", "+5511987654324"}
)

// MockWhatsAppGateway
type MockWhatsAppGateway struct {
	mock.Mock
}

func (m *MockWhatsAppGateway) SendText(ctx context.Context, instance, phone, text string) (string, error) {
	args := m.Called(ctx, instance, phone, text)
	return args.String(0), args.Error(1)
}

func (m *MockWhatsAppGateway) ConnectionState(ctx context.Context, instance string) (entity.WhatsAppStatus, error) {
	args := m.Called(ctx, instance)
	return args.Get(0).(entity.WhatsAppStatus), args.Error(1)
}

func (m *MockWhatsAppGateway) Connect(ctx context.Context, instance string) (string, error) {
	args := m.Called(ctx, instance)
	return args.String(0), args.Error(1)
}

// MockAlertSender
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendUnassignedLeadAlert(lead *entity.Lead) error {
	return m.Called(lead).Error(0)
}

func (m *MockAlertSender) SendWhatsAppOfflineAlert(user *entity.User) error {
	return m.Called(user).Error(0)
}

// recordingPublisher keeps published events in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.LeadEvent
	err    error
}

func (p *recordingPublisher) PublishLeadEvent(_ context.Context, e entity.LeadEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type staticTokens struct{}

func (staticTokens) Issue(s entity.Session) (string, time.Time, error) {
	return "token-" + s.UserID, time.Now().Add(time.Hour), nil
}

// fixture wires the use cases over memory stores.
type fixture struct {
	quizzes   *memory.QuizStore
	leads     *memory.LeadStore
	users     *memory.UserStore
	templates *memory.TemplateStore
	settings  *memory.SettingsStore
	rules     *memory.RemarketingStore
	logs      *memory.MessageLogStore
	cursor    *memory.Cursor
	events    *recordingPublisher

	quizUC       *usecase.QuizUseCase
	submissionUC *usecase.SubmissionUseCase
	leadUC       *usecase.LeadUseCase
	distributor  *usecase.Distributor
}

func newFixture() *fixture {
	f := &fixture{
		quizzes:   memory.NewQuizStore(),
		leads:     memory.NewLeadStore(),
		users:     memory.NewUserStore(),
		templates: memory.NewTemplateStore(),
		settings:  memory.NewSettingsStore(),
		rules:     memory.NewRemarketingStore(),
		logs:      memory.NewMessageLogStore(),
		cursor:    memory.NewCursor(),
		events:    &recordingPublisher{},
	}
	f.quizUC = usecase.NewQuizUseCase(f.quizzes, nil, nil)
	f.distributor = usecase.NewDistributor(f.users, f.cursor, nil)
	f.submissionUC = usecase.NewSubmissionUseCase(f.quizUC, f.leads, f.settings, f.distributor, f.events, nil)
	f.leadUC = usecase.NewLeadUseCase(f.leads, f.users, nil)
	return f
}

// addSeller stores an online seller created i milliseconds after a fixed base,
// so list order is deterministic.
func (f *fixture) addSeller(t *testing.T, i int, name string, limit, received, priority int, status entity.WhatsAppStatus) *entity.User {
	t.Helper()
	u, err := entity.NewSeller(name, phones[i%len(phones)], limit, priority)
	require.NoError(t, err)
	u.WhatsAppStatus = status
	u.LeadsReceivedToday = received
	u.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, i*int(time.Millisecond), time.UTC)
	require.NoError(t, f.users.Create(ctxBg, u))
	return u
}

func (f *fixture) setSettings(t *testing.T, mutate func(*entity.Settings)) {
	t.Helper()
	s := entity.DefaultSettings()
	mutate(&s)
	require.NoError(t, f.settings.Save(ctxBg, s))
}

// publishedQuiz builds a one-step quiz with a required text question and an
// optional number question.
func (f *fixture) publishedQuiz(t *testing.T) (*entity.Quiz, *entity.QuizQuestion, *entity.QuizQuestion) {
	t.Helper()
	quiz, err := f.quizUC.Create(ctxBg, admin, "Avaliação Gratuita", "")
	require.NoError(t, err)
	step, err := f.quizUC.AddStep(ctxBg, admin, quiz.ID, "")
	require.NoError(t, err)
	required, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, step.ID, usecase.QuestionInput{Prompt: "Qual procedimento?"})
	require.NoError(t, err)
	no := false
	optional, err := f.quizUC.AddQuestion(ctxBg, admin, quiz.ID, step.ID, usecase.QuestionInput{Type: entity.QuestionNumber, Prompt: "Idade", Required: &no})
	require.NoError(t, err)
	quiz, err = f.quizUC.SetPublished(ctxBg, admin, quiz.ID, true)
	require.NoError(t, err)
	return quiz, required, optional
}

func (f *fixture) submit(t *testing.T, slug string) *usecase.SubmitOutput {
	t.Helper()
	quiz, err := f.quizzes.FindBySlug(ctxBg, slug)
	require.NoError(t, err)
	q := quiz.Steps[0].Questions[0]
	out, err := f.submissionUC.Submit(ctxBg, slug, usecase.SubmitInput{
		Name:    "Cliente",
		Phone:   "(11) 98888-7777",
		Answers: []entity.Answer{{QuestionID: q.ID, Value: entity.TextAnswer("Botox")}},
	})
	require.NoError(t, err)
	return out
}

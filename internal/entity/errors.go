package entity

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

var (
	ErrQuizNotFound       = fmt.Errorf("quiz %w", ErrNotFound)
	ErrStepNotFound       = fmt.Errorf("etapa %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("pergunta %w", ErrNotFound)
	ErrLeadNotFound       = fmt.Errorf("lead %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("usuário %w", ErrNotFound)
	ErrTemplateNotFound   = fmt.Errorf("template %w", ErrNotFound)
	ErrRuleNotFound       = fmt.Errorf("regra de remarketing %w", ErrNotFound)
	ErrMessageLogNotFound = fmt.Errorf("mensagem %w", ErrNotFound)
	ErrSettingsNotFound   = fmt.Errorf("configurações %w", ErrNotFound)
)

var (
	// ErrNoEligibleUser is returned by the distribution policy when nobody can take the lead.
	// The lead stays unassigned, waiting for a manual assignment.
	ErrNoEligibleUser = errors.New("nenhum vendedor elegível para receber o lead")

	ErrInvalidStatus      = errors.New("status inválido")
	ErrTerminalStatus     = errors.New("lead está em um status final")
	ErrLeadConflict       = errors.New("lead alterado por outra operação")
	ErrSlugTaken          = errors.New("slug já utilizado")
	ErrForbidden          = errors.New("acesso negado")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

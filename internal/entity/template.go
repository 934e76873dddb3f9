package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PlaceholderName   = "{{nome}}"
	PlaceholderSeller = "{{vendedor}}"
)

type MessageTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessageTemplate(name, content string, isDefault bool) (*MessageTemplate, error) {
	t := &MessageTemplate{
		ID:        uuid.New().String(),
		IsDefault: isDefault,
		CreatedAt: time.Now(),
	}
	if err := t.Update(name, content); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *MessageTemplate) Update(name, content string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{"name", "is required"}
	}
	if strings.TrimSpace(content) == "" {
		return ValidationError{"content", "is required"}
	}
	t.Name = name
	t.Content = content
	return nil
}

// Render fills the lead name and seller name placeholders.
func (t *MessageTemplate) Render(leadName, sellerName string) string {
	return RenderMessage(t.Content, leadName, sellerName)
}

func RenderMessage(content, leadName, sellerName string) string {
	r := strings.NewReplacer(PlaceholderName, leadName, PlaceholderSeller, sellerName)
	return r.Replace(content)
}

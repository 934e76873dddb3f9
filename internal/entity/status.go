package entity

import "strings"

// KanbanStatus is a position in the sales pipeline.
type KanbanStatus string

const (
	StatusNovo        KanbanStatus = "novo"
	StatusEmContato   KanbanStatus = "em_contato"
	StatusQualificado KanbanStatus = "qualificado"
	StatusProposta    KanbanStatus = "proposta"
	StatusFechado     KanbanStatus = "fechado"
	StatusPerdido     KanbanStatus = "perdido"
)

// Pipeline lists every status in board order.
var Pipeline = []KanbanStatus{
	StatusNovo,
	StatusEmContato,
	StatusQualificado,
	StatusProposta,
	StatusFechado,
	StatusPerdido,
}

var statusLabels = map[KanbanStatus]string{
	StatusNovo:        "Novo",
	StatusEmContato:   "Em Contato",
	StatusQualificado: "Qualificado",
	StatusProposta:    "Proposta",
	StatusFechado:     "Fechado",
	StatusPerdido:     "Perdido",
}

func ParseStatus(s string) (KanbanStatus, error) {
	status := KanbanStatus(strings.TrimSpace(s))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s KanbanStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether the pipeline ends at s.
func (s KanbanStatus) IsTerminal() bool {
	return s == StatusFechado || s == StatusPerdido
}

func (s KanbanStatus) Label() string {
	return statusLabels[s]
}

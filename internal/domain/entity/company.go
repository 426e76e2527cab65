package entity

import "time"

// Company representa una organización/tenant del sistema.
// Todas las tablas del core se particionan lógicamente por company_id.
type Company struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

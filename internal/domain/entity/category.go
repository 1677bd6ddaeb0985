package entity

import "time"

// Category agrupa productos del catálogo. Code es único y SortOrder define el orden de listado.
type Category struct {
	ID        string
	Code      string
	Name      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

package dto

// PageRequest paginación para listados (page empieza en 1).
type PageRequest struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva datos estructurados (p. ej. current/requested).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// InsufficientStockDetails detalle de un rechazo por stock insuficiente.
type InsufficientStockDetails struct {
	Current   int64 `json:"current"`
	Requested int64 `json:"requested"`
}

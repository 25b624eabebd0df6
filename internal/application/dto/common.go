package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto y límites a Limit/Offset.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Envelope cuerpo común de todas las respuestas HTTP.
// Data se omite en errores; Errors solo aparece en errores de validación.
type Envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Code    string        `json:"code,omitempty"`
	Count   *int          `json:"count,omitempty"`
	Page    *PageResponse `json:"page,omitempty"`
	Data    interface{}   `json:"data,omitempty"`
	Errors  []string      `json:"errors,omitempty"`
}

// ErrorResponse cuerpo de error HTTP (usado en la documentación Swagger).
type ErrorResponse struct {
	Success bool     `json:"success"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

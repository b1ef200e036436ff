// File: internal/dtos/response.go
package dtos

// Envelope is the body of every JSON API response.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Pagination describes the page a list response holds.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PagedData wraps a list with its pagination.
type PagedData struct {
	Items      interface{} `json:"items"`
	Pagination Pagination  `json:"pagination"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

func Success(data interface{}, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

func Failure(message string, fields map[string][]string) Envelope {
	return Envelope{Success: false, Message: message, Errors: fields}
}

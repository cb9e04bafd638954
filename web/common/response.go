package common

type SuccessResponse struct {
	Data any `json:"data"`
}

func NewSuccessResponse(data any) *SuccessResponse {
	return &SuccessResponse{Data: data}
}

// Pagination echoes the window a list was cut to. Limit and Offset are zero
// for lists that are returned whole.
type Pagination struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit,omitempty"`
	Offset int   `json:"offset,omitempty"`
}

type SearchResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewSearchResponse(data any, total int64) *SearchResponse {
	return &SearchResponse{Data: data, Pagination: Pagination{Total: total}}
}

func (r *SearchResponse) Page(limit, offset int) *SearchResponse {
	r.Pagination.Limit = limit
	r.Pagination.Offset = offset
	return r
}

// ErrorResponse is the body of every failed request. Field names the offending
// input for validation failures.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

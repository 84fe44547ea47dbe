package response

// Response represents a standard API response format
type Response struct {
	Status     string `json:"status"`      // "success" or "error"
	StatusCode int    `json:"status_code"` // HTTP status code
	Data       any    `json:"data,omitempty"`
	Meta       *Meta  `json:"meta,omitempty"`
	Error      string `json:"error,omitempty"`
	// Message is the user-facing (Arabic) text of an error, when one exists.
	Message string `json:"message,omitempty"`
}

// Meta describes one page of a list response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data any) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Page returns a success response for one page of a list.
func Page(statusCode int, data any, meta Meta) Response {
	r := Success(statusCode, data)
	r.Meta = &meta
	return r
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// Localized is Error with a message meant for the end user.
func Localized(statusCode int, err, message string) Response {
	r := Error(statusCode, err)
	r.Message = message
	return r
}

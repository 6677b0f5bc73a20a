package handler

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// ErrorDetail is the data of an error response produced from an AppError.
type ErrorDetail struct {
	Code         int          `json:"code"`
	Resource     string       `json:"resource,omitempty"`
	ID           string       `json:"id,omitempty"`
	Step         string       `json:"step,omitempty"`
	Inconsistent bool         `json:"inconsistent,omitempty"`
	Fields       []FieldError `json:"fields,omitempty"`
}

// FieldError describes one failed validation rule of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

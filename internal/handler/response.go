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

// StatusFor maps service errors to HTTP status codes. Anything that does
// not carry its own status code is treated as an internal failure.
func StatusFor(err error) int {
	if coded, ok := err.(interface{ StatusCode() int }); ok {
		return coded.StatusCode()
	}
	return 500
}

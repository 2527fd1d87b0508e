package handler

// Response is the envelope for action endpoints that have no resource to
// return. Resource endpoints answer with the bare resource or list.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

package models

// Response is the success envelope returned by every handler.
type Response struct {
	Success    bool        `json:"success"`
	Count      *int        `json:"count,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// List wraps a collection together with its length.
func List(data interface{}, count int) Response {
	return Response{Success: true, Count: &count, Data: data}
}

func Message(msg string) Response {
	return Response{Success: true, Message: msg}
}

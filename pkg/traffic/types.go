package traffic

import (
	"net/http"
	"strings"
)

// Header holds header entries with case-insensitive keys.
type Header map[string]string

// Get returns the value for key, ignoring case.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[strings.ToLower(key)]
}

// Set stores value under the lower-cased key.
func (h Header) Set(key, value string) {
	h[strings.ToLower(key)] = value
}

// Del removes key, ignoring case.
func (h Header) Del(key string) {
	delete(h, strings.ToLower(key))
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Request is the neutral request model. The engine reads it as a match key
// and never mutates it.
type Request struct {
	URL     string
	Method  string
	Headers Header
	Body    []byte
}

// NewRequest creates an initialized request.
func NewRequest(method, url string) *Request {
	return &Request{
		URL:     url,
		Method:  method,
		Headers: make(Header),
	}
}

// Key is the value exact-match rules compare against. Two requests with the
// same key are indistinguishable to an exact rule.
func (r *Request) Key() string { return r.URL }

// Response is the neutral response model.
type Response struct {
	StatusCode int
	Headers    Header
	Body       []byte
}

// NewResponse creates a response with the default status.
func NewResponse() *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Headers:    make(Header),
	}
}

// Outcome is what a mock hands back: a canned response or a failure.
// Exactly one of Response and Err is set.
type Outcome struct {
	Response *Response
	Err      error
}

// Respond builds a success outcome. A zero status means 200.
func Respond(status int, headers map[string]string, body []byte) Outcome {
	res := NewResponse()
	if status != 0 {
		res.StatusCode = status
	}
	for k, v := range headers {
		res.Headers.Set(k, v)
	}
	res.Body = body
	return Outcome{Response: res}
}

// Fail builds a failure outcome.
func Fail(err error) Outcome { return Outcome{Err: err} }

// Failed reports whether the outcome is the failure variant.
func (o Outcome) Failed() bool { return o.Err != nil }

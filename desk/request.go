package desk

import "net/http"

// Request describes one API call. It is resent unchanged when a throttled
// call is retried, so it must not be modified once handed to the client.
type Request struct {
	Method   string
	Resource string
	Header   http.Header
	Body     []byte
}

// NewRequest creates a request for a resource path relative to the API base URL
func NewRequest(method, resource string) *Request {
	return &Request{
		Method:   method,
		Resource: resource,
		Header:   http.Header{"Accept": {"application/json"}},
	}
}

// withJSONBody returns a copy of the request carrying a JSON body
func (r *Request) withJSONBody(body string) *Request {
	clone := &Request{
		Method:   r.Method,
		Resource: r.Resource,
		Header:   r.Header.Clone(),
		Body:     []byte(body),
	}
	if clone.Header == nil {
		clone.Header = http.Header{}
	}
	clone.Header.Set("Content-Type", "application/json")
	return clone
}

// Response is the outcome of a single exchange with the API
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	// Err holds a transport-level failure, set when no usable response arrived
	Err error
}

// IsSuccess reports whether desk accepted the call
func (r *Response) IsSuccess() bool {
	return r.StatusCode == http.StatusOK || r.StatusCode == http.StatusCreated
}

// String returns the body as text
func (r *Response) String() string {
	return string(r.Body)
}

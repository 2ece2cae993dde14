package composure

// RawResponse is what a [Transport] hands back: the status code and the raw
// body bytes. A nil Body means the exchange produced no body.
type RawResponse struct {
	Body       []byte
	StatusCode int
}

// Response is the caller-visible result of a call. Features may rewrite the
// status code and body in place while the chain unwinds.
type Response struct {
	body       *string
	statusCode int
}

// NewResponse builds a response with a body.
func NewResponse(statusCode int, body string) *Response {
	return &Response{statusCode: statusCode, body: &body}
}

// NewEmptyResponse builds a response without a body.
func NewEmptyResponse(statusCode int) *Response {
	return &Response{statusCode: statusCode}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.statusCode }

// SetStatusCode replaces the status code.
func (r *Response) SetStatusCode(code int) { r.statusCode = code }

// Body returns the body text and whether a body is present.
func (r *Response) Body() (string, bool) {
	if r.body == nil {
		return "", false
	}

	return *r.body, true
}

// HasBody reports whether the response carries a body.
func (r *Response) HasBody() bool { return r.body != nil }

// SetBody replaces the body.
func (r *Response) SetBody(body string) { r.body = &body }

// ClearBody removes the body.
func (r *Response) ClearBody() { r.body = nil }

// Clone returns an independent copy.
func (r *Response) Clone() *Response {
	c := &Response{statusCode: r.statusCode}
	if r.body != nil {
		b := *r.body
		c.body = &b
	}

	return c
}

// normalize converts a raw transport response into a [Response], decoding
// the body bytes as text when present.
func normalize(raw *RawResponse) *Response {
	if raw.Body == nil {
		return NewEmptyResponse(raw.StatusCode)
	}

	return NewResponse(raw.StatusCode, string(raw.Body))
}

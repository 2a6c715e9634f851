// Package response accumulates what an action wants to send back and
// serializes it.
package response

import (
	"encoding/json"
	"net/http"
)

// Response is the transport-independent result of a dispatch. Template and
// Title are hints for a view layer and are never serialized.
type Response struct {
	StatusCode int
	Message    string
	Payload    interface{}
	Redirect   string
	Template   string
	Title      string
}

// Envelope is the serialized body.
type Envelope struct {
	Message string      `json:"message"`
	Payload interface{} `json:"payload"`
}

// Field sets one field of a Response.
type Field func(*Response)

func Status(code int) Field {
	return func(r *Response) { r.StatusCode = code }
}

func Message(msg string) Field {
	return func(r *Response) { r.Message = msg }
}

func Payload(p interface{}) Field {
	return func(r *Response) { r.Payload = p }
}

// Redirect records a location and forces a redirect status.
func Redirect(target string) Field {
	return func(r *Response) { r.Redirect = target }
}

func Template(name string) Field {
	return func(r *Response) { r.Template = name }
}

func Title(title string) Field {
	return func(r *Response) { r.Title = title }
}

// Builder is owned by a single request.
type Builder struct {
	resp Response
}

func NewBuilder() *Builder {
	return &Builder{resp: Response{
		StatusCode: http.StatusOK,
		Payload:    map[string]interface{}{},
	}}
}

// Merge applies only the given fields and leaves the rest untouched. While a
// redirect is set the status is kept in the 3xx range.
func (b *Builder) Merge(fields ...Field) *Builder {
	for _, f := range fields {
		f(&b.resp)
	}
	if b.resp.Redirect != "" && !IsRedirect(b.resp.StatusCode) {
		b.resp.StatusCode = http.StatusFound
	}
	return b
}

func (b *Builder) Response() Response {
	return b.resp
}

func (b *Builder) StatusCode() int {
	return b.resp.StatusCode
}

// Location is the redirect target, or "".
func (b *Builder) Location() string {
	return b.resp.Redirect
}

func (b *Builder) Envelope() Envelope {
	payload := b.resp.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return Envelope{Message: b.resp.Message, Payload: payload}
}

func (b *Builder) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Envelope())
}

func IsRedirect(code int) bool {
	return code >= 300 && code < 400
}

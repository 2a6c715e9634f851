// Package request turns raw HTTP input into the structured Request the
// router and controllers work on.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/minus-twelve/relay/errs"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"

	// MaxBodyBytes caps how much of a body FromHTTP reads.
	MaxBodyBytes = 1 << 20

	methodOverrideField = "_method"

	// JSONValueKey holds a JSON body whose top level is not an object.
	JSONValueKey = "_value"
)

// Parameters holds the positional path segments that follow the controller
// name and the decoded body.
type Parameters struct {
	Header []string
	Body   map[string]interface{}
}

// Request is immutable once parsed.
type Request struct {
	Method     string
	Controller string
	Parameters Parameters
}

// New returns the request for empty input: GET on the root controller.
func New() *Request {
	return &Request{
		Method: http.MethodGet,
		Parameters: Parameters{
			Header: []string{},
			Body:   map[string]interface{}{},
		},
	}
}

// Parse builds a Request from its raw parts. Only a malformed body fails,
// with a Parse error.
func Parse(method, path, contentType string, body []byte) (*Request, error) {
	req := New()
	if method != "" {
		req.Method = strings.ToUpper(method)
	}
	req.Controller, req.Parameters.Header = splitPath(path)

	parsed, err := parseBody(contentType, body)
	if err != nil {
		return nil, err
	}
	req.Parameters.Body = parsed

	if req.Method == http.MethodPost && mediaType(contentType) == ContentTypeForm {
		if override, ok := parsed[methodOverrideField].(string); ok {
			switch m := strings.ToUpper(override); m {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				req.Method = m
				delete(parsed, methodOverrideField)
			}
		}
	}
	return req, nil
}

// FromHTTP reads the body of r to completion and parses it.
func FromHTTP(r *http.Request) (*Request, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		if err != nil {
			return nil, errs.ParseError("could not read request body", err)
		}
		if len(body) > MaxBodyBytes {
			return nil, errs.ParseError(fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes), nil)
		}
	}
	return Parse(r.Method, r.URL.EscapedPath(), r.Header.Get("Content-Type"), body)
}

// Segment returns the i-th header parameter.
func (r *Request) Segment(i int) (string, bool) {
	if i < 0 || i >= len(r.Parameters.Header) {
		return "", false
	}
	return r.Parameters.Header[i], true
}

// BodyString returns a body field as a string, or "" when it is missing or
// not a string.
func (r *Request) BodyString(key string) string {
	s, _ := r.Parameters.Body[key].(string)
	return strings.TrimSpace(s)
}

func splitPath(path string) (string, []string) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	var segments []string
	for _, raw := range strings.Split(path, "/") {
		if raw == "" {
			continue
		}
		seg, err := url.PathUnescape(raw)
		if err != nil {
			seg = raw
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return "", []string{}
	}
	return segments[0], segments[1:]
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

func parseBody(contentType string, body []byte) (map[string]interface{}, error) {
	switch mediaType(contentType) {
	case ContentTypeForm:
		return parseForm(string(body)), nil
	case ContentTypeJSON:
		return parseJSON(body)
	default:
		return map[string]interface{}{}, nil
	}
}

// parseForm splits on '&' then '='; a repeated key keeps its last value.
func parseForm(body string) map[string]interface{} {
	out := map[string]interface{}{}
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// parseJSON decodes exactly one JSON value. An object becomes the body as
// is; any other value is kept under JSONValueKey.
func parseJSON(body []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]interface{}{}, nil
	}

	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil, errs.ParseError("malformed JSON body", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("more than one JSON value")
		}
		return nil, errs.ParseError("malformed JSON body", fmt.Errorf("trailing data: %w", err))
	}

	switch v := value.(type) {
	case map[string]interface{}:
		return v, nil
	case nil:
		return map[string]interface{}{}, nil
	default:
		return map[string]interface{}{JSONValueKey: v}, nil
	}
}

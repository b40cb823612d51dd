// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"strings"
	"time"
)

// A Request is a user-authored HTTP request awaiting execution.
//
// The field structure is deliberately looser than the lower-level
// http.Request from net/http: the URL stays a string until the engine
// encodes it, headers keep their authored spelling, and the body may
// still be an unconsumed stream. The engine resolves all of this into
// a transport-ready form when the request is executed.
type Request struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL is the target URL exactly as authored. It may be an absolute
	// URL or a bare path; the engine percent-encodes it defensively
	// before submission.
	URL string

	// Header contains the request header fields as authored. Key
	// spelling is preserved; lookups are case-insensitive. It may be
	// nil; the engine materializes an empty header set before any step
	// that mutates it.
	Header Header

	// Body is the request body. It may be nil (no body), a string, a
	// []byte, or an io.Reader/io.ReadCloser. A reader body is owned
	// exclusively by the request until consumed: the engine drains it
	// into a buffer exactly once, and re-reading requires re-wrapping
	// a buffer (see Reusable).
	Body interface{}

	// RawBody is the pre-substitution source text of the body, kept
	// for display and cache correlation. It is echoed through to the
	// response unchanged and never sent on the wire.
	RawBody string

	// VariableCacheKey identifies this request for cross-request
	// variable resolution by outside collaborators. The engine passes
	// it through untouched.
	VariableCacheKey string

	// SourceDir is the directory of the file the request was authored
	// in, used as the last-resort root when resolving relative
	// client-certificate paths.
	SourceDir string
}

// New returns a new Request given a method, URL, and optional body.
//
// Parameter body may be nil (empty body), or it may be a string,
// []byte, io.Reader, or io.ReadCloser. Reader bodies are kept as-is
// and drained later by the engine.
func New(method, url string, body interface{}) (*Request, error) {
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("restfire/request: invalid method %q", method)
	}
	return &Request{
		Method: method,
		URL:    url,
		Header: make(Header),
		Body:   body,
	}, nil
}

// A SerializedRequest is the persistence-facing variant of Request. It
// carries the same fields plus the time the request was started, and a
// buffered body, so a history store can round-trip it as JSON.
type SerializedRequest struct {
	Method           string            `json:"method"`
	URL              string            `json:"url"`
	Header           map[string]string `json:"headers,omitempty"`
	Body             string            `json:"body,omitempty"`
	RawBody          string            `json:"rawBody,omitempty"`
	VariableCacheKey string            `json:"requestVariableCacheKey,omitempty"`
	StartTime        time.Time         `json:"startTime"`
}

// Serialize converts req into its persistence-facing form, stamping it
// with start time t. A reader body is drained by the conversion, so
// serialize only requests whose body the engine has already buffered,
// or whose stream may be consumed here.
func Serialize(req *Request, t time.Time) (*SerializedRequest, error) {
	b, err := BodyBytes(req.Body)
	if err != nil {
		return nil, err
	}
	return &SerializedRequest{
		Method:           req.Method,
		URL:              req.URL,
		Header:           req.Header,
		Body:             string(b),
		RawBody:          req.RawBody,
		VariableCacheKey: req.VariableCacheKey,
		StartTime:        t,
	}, nil
}

// Request converts s back into an executable Request.
func (s *SerializedRequest) Request() *Request {
	var body interface{}
	if s.Body != "" {
		body = s.Body
	}
	return &Request{
		Method:           s.Method,
		URL:              s.URL,
		Header:           Header(s.Header).Clone(),
		Body:             body,
		RawBody:          s.RawBody,
		VariableCacheKey: s.VariableCacheKey,
	}
}

// validMethod checks the method against the token grammar of RFC 7230
// section 3.2.6.
func validMethod(method string) bool {
	return strings.IndexFunc(method, func(r rune) bool {
		return !isTokenRune(r)
	}) == -1
}

func isTokenRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case strings.ContainsRune("!#$%&'*+-.^_`|~", r):
		return true
	}
	return false
}

// HasExplicitPort reports whether a host of the form "host",
// "host:port", or "[ipv6::address]:port" includes a port.
func HasExplicitPort(host string) bool {
	return strings.LastIndex(host, ":") > strings.LastIndex(host, "]")
}

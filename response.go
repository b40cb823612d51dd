// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/restfire/restfire/request"
	"golang.org/x/text/encoding/htmlindex"
)

// A Response is the fully materialized result of one completed
// exchange. It is created once per exchange, immutable thereafter, and
// owned by the caller that receives it.
type Response struct {
	// StatusCode is the HTTP status code, e.g. 200.
	StatusCode int

	// StatusMessage is the reason phrase, e.g. "OK".
	StatusMessage string

	// HTTPVersion is the protocol version, e.g. "1.1".
	HTTPVersion string

	// Header contains the response header fields with the letter
	// casing the server sent restored.
	Header request.Header

	// Body is the response body decoded per the declared charset.
	Body string

	// BodySizeInBytes is the count of body bytes observed on the wire,
	// before any decompression or charset decoding.
	BodySizeInBytes int64

	// HeadersSizeInBytes approximates the wire size of the response
	// headers.
	HeadersSizeInBytes int64

	// BodyBuffer is the raw body after transport-level decompression
	// but before charset decoding.
	BodyBuffer []byte

	// TimingPhases partitions the exchange's duration.
	TimingPhases TimingPhases

	// Request echoes the effective request actually sent, after
	// authentication rewriting and header normalization.
	Request *request.Request
}

// materialize assembles a Response from the raw transport reply.
func materialize(resp *http.Response, body []byte, bodySize, headersSize int64, phases TimingPhases, o *Options, req *request.Request, sentURL string) *Response {
	return &Response{
		StatusCode:         resp.StatusCode,
		StatusMessage:      statusMessage(resp),
		HTTPVersion:        fmt.Sprintf("%d.%d", resp.ProtoMajor, resp.ProtoMinor),
		Header:             responseHeader(resp.Header),
		Body:               decodeBody(body, resp.Header.Get("Content-Type"), o.DecodeEscapedUnicode),
		BodySizeInBytes:    bodySize,
		HeadersSizeInBytes: headersSize,
		BodyBuffer:         body,
		TimingPhases:       phases,
		Request:            echoRequest(o, req, sentURL),
	}
}

func statusMessage(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// responseHeader flattens the transport's header map into the
// case-restored form: the transport hands over lowercase names plus
// the raw name list, and RestoreHeaderCase maps them back.
func responseHeader(h http.Header) request.Header {
	lower := make(request.Header, len(h))
	raw := make([]string, 0, len(h))
	for name, values := range h {
		lower[strings.ToLower(name)] = strings.Join(values, ", ")
		raw = append(raw, name)
	}
	return RestoreHeaderCase(lower, raw)
}

// RestoreHeaderCase restores originally-sent header name casing. The
// headers parameter holds lowercase names as delivered by the
// transport; rawNames lists the names as they appeared on the wire.
// A name with no raw form falls back to its lowercase spelling, which
// should not normally occur. Restoration is idempotent: applying it to
// an already-correctly-cased header set returns an equal set.
func RestoreHeaderCase(headers request.Header, rawNames []string) request.Header {
	caseMap := make(map[string]string, len(rawNames))
	for _, name := range rawNames {
		caseMap[strings.ToLower(name)] = name
	}
	restored := make(request.Header, len(headers))
	for name, value := range headers {
		if original, ok := caseMap[strings.ToLower(name)]; ok {
			restored[original] = value
		} else {
			restored[name] = value
		}
	}
	return restored
}

// CapitalizeHeaderName uppercases the first letter of each run of
// non-hyphen characters, e.g. "content-type" becomes "Content-Type".
// Characters after the first of each run are left untouched.
func CapitalizeHeaderName(name string) string {
	b := []byte(name)
	atBoundary := true
	for i, c := range b {
		if c == '-' {
			atBoundary = true
			continue
		}
		if atBoundary && 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		atBoundary = false
	}
	return string(b)
}

// echoRequest builds the effective-request echo carried on the
// response: the options' post-normalization state with word-boundary
// capitalized header names, plus the original raw body and cache key
// passed through unchanged. A buffered body is echoed as a fresh
// consume-once stream.
func echoRequest(o *Options, req *request.Request, sentURL string) *request.Request {
	h := make(request.Header, len(o.Header))
	for name, value := range o.Header {
		h[CapitalizeHeaderName(name)] = value
	}
	var body interface{}
	if o.BodyIsText {
		body = string(o.Body)
	} else if len(o.Body) > 0 {
		body = request.Reusable(o.Body)
	}
	return &request.Request{
		Method:           o.Method,
		URL:              sentURL,
		Header:           h,
		Body:             body,
		RawBody:          req.RawBody,
		VariableCacheKey: req.VariableCacheKey,
	}
}

// decodeBody decodes raw per the charset declared in contentType,
// defaulting to UTF-8. An unknown charset name or a decode failure
// falls back to UTF-8 interpretation rather than erroring. When
// unescape is set, \uXXXX escape sequences in the decoded text are
// replaced with the corresponding characters.
func decodeBody(raw []byte, contentType string, unescape bool) string {
	charset := ""
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			charset = params["charset"]
		}
	}
	s := decodeCharset(raw, charset)
	if unescape {
		s = unescapeUnicode(s)
	}
	return s
}

func decodeCharset(raw []byte, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "utf-8" || name == "utf8" {
		return string(raw)
	}
	enc, err := htmlindex.Get(name)
	if err != nil || enc == nil {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

var unicodeEscape = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)

func unescapeUnicode(s string) string {
	return unicodeEscape.ReplaceAllStringFunc(s, func(esc string) string {
		n, err := strconv.ParseUint(esc[2:], 16, 32)
		if err != nil {
			return esc
		}
		return string(rune(n))
	})
}

// Text renders the response in raw HTTP/1.x message form, with eol
// terminating the status line and each header line. The blank line
// separating headers from the body appears only when the body is
// non-empty. Header order is name-sorted for a stable rendering.
func (r *Response) Text(eol string) string {
	lines := make([]string, 0, len(r.Header)+3)
	lines = append(lines, "HTTP/"+r.HTTPVersion+" "+strconv.Itoa(r.StatusCode)+" "+r.StatusMessage)
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, name+": "+r.Header[name])
	}
	if r.Body != "" {
		lines = append(lines, "", r.Body)
	}
	return strings.Join(lines, eol)
}

// RawText renders the response like Text with CRLF line endings, the
// form used when saving a response to file.
func (r *Response) RawText() string {
	return r.Text("\r\n")
}

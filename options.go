// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/restfire/restfire/auth"
	"github.com/restfire/restfire/config"
	"github.com/restfire/restfire/hostcert"
	"github.com/restfire/restfire/proxyselect"
	"github.com/restfire/restfire/request"
)

// A PersistentJar is a cookie jar backed by a persistent store. Save
// flushes the jar to its store; the engine calls it after every
// completed exchange.
type PersistentJar interface {
	http.CookieJar
	Save() error
}

// Options is the fully resolved execution plan for one request. It is
// built fresh per request from the user-authored request and a
// configuration snapshot, and it is never shared between executions.
type Options struct {
	// Method is the HTTP method. Never empty; an authored empty method
	// becomes GET.
	Method string

	// URL is the target URL as authored. The executor percent-encodes
	// it defensively before submission.
	URL string

	// Header is the effective header set, cloned from the request so
	// builder steps can mutate it without touching the user's copy.
	Header request.Header

	// Body is the wire-ready request body. A stream body has already
	// been drained into this buffer.
	Body []byte

	// BodyIsText records whether the authored body was raw text. The
	// response echo returns a text body as a string and a buffered or
	// streamed body as a fresh consume-once stream.
	BodyIsText bool

	// FollowRedirects controls automatic 3xx handling.
	FollowRedirects bool

	// Timeout bounds the whole exchange. Zero means no timeout.
	Timeout time.Duration

	// Jar is the persistent cookie jar, attached only when cookie
	// persistence is enabled.
	Jar PersistentJar

	// Certificate is the client certificate material for the target
	// host, if configured.
	Certificate *hostcert.Certificate

	// Proxy is the proxy to route the request through, if any.
	Proxy *url.URL

	// StrictSSL controls server certificate verification.
	StrictSSL bool

	// DecompressGzip enables transport-level gzip decompression. Set
	// only when the request explicitly asks for gzip.
	DecompressGzip bool

	// DecodeEscapedUnicode carries the corresponding setting through
	// to the response materializer.
	DecodeEscapedUnicode bool

	// Auth is the authentication strategy selected from the authored
	// Authorization header. Never nil; defaults to auth.None.
	Auth auth.Strategy
}

// A Builder turns user-authored requests into executable Options. The
// zero value builds valid options without certificates or cookies.
type Builder struct {
	// Certificates resolves per-host client certificates. May be nil.
	Certificates *hostcert.Resolver

	// Jar is attached to options when the settings enable cookie
	// persistence. May be nil.
	Jar PersistentJar
}

// Build composes the execution plan for req from the given settings
// snapshot. The only error condition is a body stream that fails to
// drain; every other malformed input is skipped silently.
func (b *Builder) Build(req *request.Request, s *config.Settings) (*Options, error) {
	// body normalization: the transport requires a determinate body
	body, err := request.BodyBytes(req.Body)
	if err != nil {
		return nil, err
	}
	_, isText := req.Body.(string)

	o := &Options{
		Method:               req.Method,
		URL:                  req.URL,
		Header:               req.Header.Clone(),
		Body:                 body,
		BodyIsText:           isText,
		FollowRedirects:      s.FollowRedirects,
		StrictSSL:            s.ProxyStrictSSL,
		DecodeEscapedUnicode: s.DecodeEscapedUnicode,
		Auth:                 auth.None,
	}
	if o.Method == "" {
		o.Method = "GET"
	}
	if s.CookiesEnabled {
		o.Jar = b.Jar
	}

	if s.Timeout > 0 {
		o.Timeout = s.Timeout
	}

	// materialize headers on both sides so later steps can mutate
	if req.Header == nil {
		req.Header = make(request.Header)
	}
	if o.Header == nil {
		o.Header = make(request.Header)
	}

	o.Auth = auth.Parse(o.Header.Get("Authorization"))
	if v := o.Auth.Authorize(); v != "" {
		o.Header.Set("Authorization", v)
	}

	if b.Certificates != nil {
		o.Certificate = b.Certificates.Resolve(req.URL, req.SourceDir)
	}

	o.Proxy = proxyselect.Selector{
		ProxyURL:     s.ProxyURL,
		ExcludeHosts: s.ProxyExcludeHosts,
	}.Select(req.URL)

	mergeDefaultHeaders(o.Header, s.DefaultHeaders, req.URL)

	if strings.Contains(strings.ToLower(o.Header.Get("Accept-Encoding")), "gzip") {
		o.DecompressGzip = true
	}

	return o, nil
}

// mergeDefaultHeaders adds each configured default header the request
// does not already carry, matching case-insensitively so a user-spelled
// header always wins. A default Host header is suppressed unless the
// URL is a bare path, to avoid overriding an explicit absolute-URL
// host.
func mergeDefaultHeaders(h request.Header, defaults map[string]string, rawURL string) {
	for name, value := range defaults {
		if h.Has(name) {
			continue
		}
		if strings.EqualFold(name, "Host") && !isBarePath(rawURL) {
			continue
		}
		h.Set(name, value)
	}
}

func isBarePath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

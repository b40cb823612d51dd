// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	cookiejar "github.com/juju/persistent-cookiejar"
	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"github.com/restfire/restfire/config"
	"github.com/restfire/restfire/hostcert"
	"github.com/restfire/restfire/lifecycle"
	"github.com/restfire/restfire/request"
)

// An HTTPDoer implements a Do method in the same manner as the Go
// standard library http.Client from the net/http package. It is the
// transport seam: the engine prepares inputs to, and interprets
// outputs from, whatever sits behind it.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	Do(r *http.Request) (*http.Response, error)
}

var emptyHandlers = HandlerGroup{}

// A Client executes user-authored requests. Its zero value is a valid
// configuration which reads empty settings, resolves no certificates,
// and tracks no lifecycle state.
//
// Configuration is consulted fresh from Config at the start of every
// request, so settings changes take effect without reconstruction.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	// Config supplies the settings snapshot for each request. If nil,
	// empty settings are used.
	Config config.Source

	// Certificates resolves per-host client certificates. If nil, no
	// certificates are attached.
	Certificates *hostcert.Resolver

	// Lifecycle, when non-nil, tracks every execution: the request is
	// registered (becoming current) before the exchange and completed
	// after it, and cancelling its identifier cancels the in-flight
	// transport call.
	Lifecycle *lifecycle.Store

	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a request execution.
	Handlers *HandlerGroup

	// Logger receives warnings for non-fatal resolution failures. The
	// zero value discards them.
	Logger zerolog.Logger

	// NewDoer builds the transport for a prepared execution plan. If
	// nil, a per-request http.Client configured from the options is
	// used. Tests and embedders may install their own.
	NewDoer func(o *Options) HTTPDoer

	mu   sync.Mutex
	jars map[string]PersistentJar
}

// Do executes req under a generated identifier and returns the
// materialized response.
//
// An error is returned when the body stream fails to drain, the URL
// does not parse, or the transport fails; any returned error is of
// type *url.Error. A non-2xx status code is not an error: the raw
// response object is always materialized.
func (c *Client) Do(ctx context.Context, req *request.Request) (*Response, error) {
	return c.DoWithID(ctx, uuid.Must(uuid.NewV4()).String(), req)
}

// DoWithID executes req under the caller's identifier. The identifier
// keys the lifecycle store, so a caller that wants to cancel or poll a
// specific request retains it.
func (c *Client) DoWithID(ctx context.Context, id string, req *request.Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := c.settings()

	if c.Lifecycle != nil {
		c.Lifecycle.Register(id, req)
		cancelCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(c.Lifecycle.Context(id), cancel)
		defer stop()
		ctx = cancelCtx
	}

	handlers := c.Handlers
	if handlers == nil {
		handlers = &emptyHandlers
	}

	e := &Execution{ID: id, Request: req}
	handlers.run(BeforeExecutionStart, e)
	e.Start = time.Now()

	b := &Builder{Certificates: c.Certificates, Jar: c.jarFor(s)}
	opts, err := b.Build(req, s)
	if err != nil {
		e.Err = urlErrorWrap(req.Method, req.URL, err)
	} else {
		e.Options = opts
		c.exchange(ctx, e, handlers)
	}

	if c.Lifecycle != nil {
		c.Lifecycle.Complete(id)
	}
	e.End = time.Now()
	handlers.run(AfterExecutionEnd, e)
	return e.Response, e.Err
}

// exchange submits the prepared options once, folding in the single
// digest challenge-response retry when the strategy answers one, and
// materializes the response on success. Errors land in e.Err, already
// wrapped.
func (c *Client) exchange(ctx context.Context, e *Execution, handlers *HandlerGroup) {
	o := e.Options
	u, err := url.Parse(o.URL)
	if err != nil {
		e.Err = urlErrorWrap(o.Method, o.URL, err)
		return
	}
	// defensive percent-encoding: re-serializing the parsed URL
	// escapes anything the author left raw
	sentURL := u.String()

	doer := c.doerFor(o)
	t := newTracer()
	hreq, err := newHTTPRequest(httptrace.WithClientTrace(ctx, t.clientTrace()), o, sentURL, "")
	if err != nil {
		e.Err = urlErrorWrap(o.Method, sentURL, err)
		return
	}
	e.HTTPRequest = hreq
	handlers.run(BeforeAttempt, e)

	resp, err := doer.Do(hreq)
	if err != nil {
		e.Err = urlErrorWrap(o.Method, sentURL, err)
		handlers.run(AfterAttempt, e)
		return
	}

	if authorization, ok := o.Auth.Answer(o.Method, u.RequestURI(), resp); ok {
		drain(resp)
		t = newTracer()
		hreq, err = newHTTPRequest(httptrace.WithClientTrace(ctx, t.clientTrace()), o, sentURL, authorization)
		if err == nil {
			e.HTTPRequest = hreq
			resp, err = doer.Do(hreq)
		}
		if err != nil {
			e.Err = urlErrorWrap(o.Method, sentURL, err)
			handlers.run(AfterAttempt, e)
			return
		}
	}

	e.HTTPResponse = resp
	handlers.run(BeforeReadBody, e)
	counter := &countingReader{r: resp.Body}
	raw, err := io.ReadAll(counter)
	_ = resp.Body.Close()
	end := time.Now()
	if err != nil {
		e.Err = urlErrorWrap(o.Method, sentURL, err)
		handlers.run(AfterAttempt, e)
		return
	}
	handlers.run(AfterAttempt, e)

	body := raw
	if o.DecompressGzip && strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		if inflated, gzErr := gunzip(raw); gzErr == nil {
			body = inflated
		} else {
			c.Logger.Debug().Err(gzErr).Msg("gzip response body not decompressible; keeping raw bytes")
		}
	}

	e.Response = materialize(resp, body, counter.n, headerBytes(resp), t.phases(end), o, e.Request, sentURL)

	if o.Jar != nil {
		if saveErr := o.Jar.Save(); saveErr != nil {
			c.Logger.Warn().Err(saveErr).Msg("cookie jar not saved")
		}
	}
}

// newHTTPRequest builds the transport-level request. A Host header
// maps to the request's Host field; authorization, when non-empty,
// overrides the Authorization header for the digest retry.
func newHTTPRequest(ctx context.Context, o *Options, sentURL, authorization string) (*http.Request, error) {
	var body io.Reader
	if len(o.Body) > 0 {
		body = bytes.NewReader(o.Body)
	}
	hreq, err := http.NewRequestWithContext(ctx, o.Method, sentURL, body)
	if err != nil {
		return nil, err
	}
	for name, value := range o.Header {
		if strings.EqualFold(name, "Host") {
			hreq.Host = value
			continue
		}
		hreq.Header.Set(name, value)
	}
	if authorization != "" {
		hreq.Header.Set("Authorization", authorization)
	}
	return hreq, nil
}

func (c *Client) settings() *config.Settings {
	if c.Config == nil {
		return &config.Settings{}
	}
	s := c.Config.Settings()
	if s == nil {
		return &config.Settings{}
	}
	return s
}

func (c *Client) doerFor(o *Options) HTTPDoer {
	if c.NewDoer != nil {
		return c.NewDoer(o)
	}
	transport := &http.Transport{
		DisableCompression: true, // the engine negotiates and decodes itself
		TLSClientConfig:    &tls.Config{},
	}
	if o.Proxy != nil {
		transport.Proxy = http.ProxyURL(o.Proxy)
	}
	if !o.StrictSSL {
		transport.TLSClientConfig.InsecureSkipVerify = true
	}
	if o.Certificate != nil {
		certs, err := o.Certificate.TLSCertificates()
		if err != nil {
			c.Logger.Warn().Err(err).Msg("client certificate material not usable")
		} else {
			transport.TLSClientConfig.Certificates = certs
		}
	}
	client := &http.Client{
		Transport: transport,
		Jar:       o.Jar,
		Timeout:   o.Timeout,
	}
	if !o.FollowRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// jarFor lazily constructs one persistent jar per cookie file. The
// file is created on first use, which is the "ensure file exists"
// half of the persistence contract; Save after each exchange is the
// other half.
func (c *Client) jarFor(s *config.Settings) PersistentJar {
	if !s.CookiesEnabled || s.CookieFile == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if jar, ok := c.jars[s.CookieFile]; ok {
		return jar
	}
	if err := config.EnsureCookieFile(s.CookieFile); err != nil {
		c.Logger.Warn().Err(err).Str("path", s.CookieFile).Msg("cookie file not created")
		return nil
	}
	jar, err := cookiejar.New(&cookiejar.Options{
		Filename:         s.CookieFile,
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		c.Logger.Warn().Err(err).Str("path", s.CookieFile).Msg("cookie jar not loaded")
		return nil
	}
	if c.jars == nil {
		c.jars = make(map[string]PersistentJar)
	}
	c.jars[s.CookieFile] = jar
	return jar
}

// headerBytes approximates the wire size of the response headers: the
// summed raw name and value lengths plus half the raw-header-pair
// count to account for separators.
func headerBytes(resp *http.Response) int64 {
	var n, pairs int64
	for name, values := range resp.Header {
		for _, value := range values {
			n += int64(len(name) + len(value))
			pairs += 2
		}
	}
	return n + pairs/2
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func gunzip(raw []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

func urlErrorWrap(method, urlStr string, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: urlStr,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}

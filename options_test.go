// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/restfire/restfire/auth"
	"github.com/restfire/restfire/config"
	"github.com/restfire/restfire/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildReq(t *testing.T, method, url string, body interface{}) *request.Request {
	t.Helper()
	r, err := request.New(method, url, body)
	require.NoError(t, err)
	return r
}

func TestBuilder_BodyNormalization(t *testing.T) {
	b := &Builder{}
	t.Run("StringPassesThrough", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "POST", "http://example.com", "hello"), &config.Settings{})
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), o.Body)
		assert.True(t, o.BodyIsText)
	})
	t.Run("StreamDrained", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "POST", "http://example.com", strings.NewReader("streamed")), &config.Settings{})
		require.NoError(t, err)
		assert.Equal(t, []byte("streamed"), o.Body)
		assert.False(t, o.BodyIsText)
	})
	t.Run("StreamFailurePropagates", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "POST", "http://example.com", brokenReader{}), &config.Settings{})
		assert.Nil(t, o)
		assert.Error(t, err)
	})
}

func TestBuilder_Timeout(t *testing.T) {
	b := &Builder{}
	t.Run("Positive", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{Timeout: 2 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, o.Timeout)
	})
	t.Run("ZeroMeansNone", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{})
		require.NoError(t, err)
		assert.Zero(t, o.Timeout)
	})
	t.Run("NegativeMeansNone", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{Timeout: -time.Second})
		require.NoError(t, err)
		assert.Zero(t, o.Timeout)
	})
}

func TestBuilder_HeaderGuard(t *testing.T) {
	b := &Builder{}
	req := &request.Request{Method: "GET", URL: "http://example.com"}
	o, err := b.Build(req, &config.Settings{})
	require.NoError(t, err)
	assert.NotNil(t, o.Header)
	assert.NotNil(t, req.Header)
}

func TestBuilder_BasicAuthRewrite(t *testing.T) {
	b := &Builder{}
	testCases := []struct {
		name     string
		authored string
		want     string
	}{
		{"Simple", "Basic alice s3cret", "alice:s3cret"},
		{"PasswordWithSpaces", "Basic alice top secret pass", "alice:top secret pass"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := buildReq(t, "GET", "http://example.com", nil)
			req.Header.Set("Authorization", tc.authored)
			o, err := b.Build(req, &config.Settings{})
			require.NoError(t, err)
			want := "Basic " + base64.StdEncoding.EncodeToString([]byte(tc.want))
			assert.Equal(t, want, o.Header.Get("Authorization"))
			// the user's copy is untouched
			assert.Equal(t, tc.authored, req.Header.Get("Authorization"))
		})
	}
}

func TestBuilder_DigestLeavesHeader(t *testing.T) {
	b := &Builder{}
	req := buildReq(t, "GET", "http://example.com", nil)
	req.Header.Set("Authorization", "Digest alice s3cret")
	o, err := b.Build(req, &config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, "Digest alice s3cret", o.Header.Get("Authorization"))
	resp := &http.Response{StatusCode: 401, Header: http.Header{}}
	resp.Header.Set("WWW-Authenticate", `Digest realm="r", nonce="n", qop="auth"`)
	_, ok := o.Auth.Answer("GET", "/", resp)
	assert.True(t, ok)
}

func TestBuilder_NoAuthHeader(t *testing.T) {
	b := &Builder{}
	o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{})
	require.NoError(t, err)
	assert.Equal(t, auth.None, o.Auth)
	assert.False(t, o.Header.Has("Authorization"))
}

func TestBuilder_DefaultHeaderMerge(t *testing.T) {
	b := &Builder{}
	t.Run("AddsAbsentHeaders", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{
			DefaultHeaders: map[string]string{"User-Agent": "restfire", "Accept": "*/*"},
		})
		require.NoError(t, err)
		assert.Equal(t, "restfire", o.Header.Get("User-Agent"))
		assert.Equal(t, "*/*", o.Header.Get("Accept"))
	})
	t.Run("NeverOverwritesCaseInsensitively", func(t *testing.T) {
		req := buildReq(t, "POST", "http://example.com", "x")
		req.Header.Set("content-type", "text/csv")
		o, err := b.Build(req, &config.Settings{
			DefaultHeaders: map[string]string{"Content-Type": "application/json"},
		})
		require.NoError(t, err)
		assert.Equal(t, "text/csv", o.Header.Get("Content-Type"))
		assert.Len(t, o.Header, 1)
	})
	t.Run("HostSuppressedForAbsoluteURL", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com/api", nil), &config.Settings{
			DefaultHeaders: map[string]string{"Host": "other.example.com"},
		})
		require.NoError(t, err)
		assert.False(t, o.Header.Has("Host"))
	})
	t.Run("HostAppliedToBarePath", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "/api/items", nil), &config.Settings{
			DefaultHeaders: map[string]string{"Host": "other.example.com"},
		})
		require.NoError(t, err)
		assert.Equal(t, "other.example.com", o.Header.Get("Host"))
	})
}

func TestBuilder_CompressionNegotiation(t *testing.T) {
	b := &Builder{}
	t.Run("GzipRequested", func(t *testing.T) {
		req := buildReq(t, "GET", "http://example.com", nil)
		req.Header.Set("Accept-Encoding", "GZIP, deflate")
		o, err := b.Build(req, &config.Settings{})
		require.NoError(t, err)
		assert.True(t, o.DecompressGzip)
	})
	t.Run("NoHeader", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{})
		require.NoError(t, err)
		assert.False(t, o.DecompressGzip)
	})
	t.Run("OtherEncoding", func(t *testing.T) {
		req := buildReq(t, "GET", "http://example.com", nil)
		req.Header.Set("Accept-Encoding", "br")
		o, err := b.Build(req, &config.Settings{})
		require.NoError(t, err)
		assert.False(t, o.DecompressGzip)
	})
}

func TestBuilder_CookieJar(t *testing.T) {
	jar := &fakeJar{}
	b := &Builder{Jar: jar}
	t.Run("Enabled", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{CookiesEnabled: true})
		require.NoError(t, err)
		assert.Equal(t, PersistentJar(jar), o.Jar)
	})
	t.Run("Disabled", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{})
		require.NoError(t, err)
		assert.Nil(t, o.Jar)
	})
}

func TestBuilder_Proxy(t *testing.T) {
	b := &Builder{}
	t.Run("Attached", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{
			ProxyURL: "http://proxy.local:3128",
		})
		require.NoError(t, err)
		require.NotNil(t, o.Proxy)
		assert.Equal(t, "proxy.local:3128", o.Proxy.Host)
	})
	t.Run("ExcludedHostGoesDirect", func(t *testing.T) {
		o, err := b.Build(buildReq(t, "GET", "http://example.com", nil), &config.Settings{
			ProxyURL:          "http://proxy.local:3128",
			ProxyExcludeHosts: []string{"example.com"},
		})
		require.NoError(t, err)
		assert.Nil(t, o.Proxy)
	})
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

type fakeJar struct {
	saves int
}

func (j *fakeJar) SetCookies(*url.URL, []*http.Cookie) {}

func (j *fakeJar) Cookies(*url.URL) []*http.Cookie { return nil }

func (j *fakeJar) Save() error {
	j.saves++
	return nil
}

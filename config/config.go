// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config holds the hot-reloadable engine configuration. The
// engine reads a fresh Settings snapshot from its Source at the start
// of every request, so edits to the backing source take effect without
// restarting anything.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/restfire/restfire/hostcert"
)

// Settings is one snapshot of the engine configuration.
type Settings struct {
	// Timeout is the per-request timeout. A zero or negative value
	// means no timeout.
	Timeout time.Duration

	// FollowRedirects controls whether the transport follows 3xx
	// redirects automatically.
	FollowRedirects bool

	// DefaultHeaders are added to every request that does not already
	// carry the header (case-insensitively). A default Host header is
	// only applied to bare-path URLs.
	DefaultHeaders map[string]string

	// ProxyURL is the proxy to route requests through, if any. Only
	// http and https proxy URLs are honored.
	ProxyURL string

	// ProxyStrictSSL controls server certificate verification when a
	// proxy is in use.
	ProxyStrictSSL bool

	// ProxyExcludeHosts lists hosts that bypass the proxy. Matching is
	// exact (case-insensitive), with port-aware rules; see package
	// proxyselect.
	ProxyExcludeHosts []string

	// Certificates maps a request host to its client certificate
	// configuration.
	Certificates map[string]hostcert.Config

	// WorkspaceRoot, when non-empty, is the root against which
	// relative certificate paths are resolved.
	WorkspaceRoot string

	// CookiesEnabled attaches a persistent cookie jar to requests.
	CookiesEnabled bool

	// CookieFile is the path of the cookie store file.
	CookieFile string

	// DecodeEscapedUnicode replaces \uXXXX escape sequences in decoded
	// response bodies with the corresponding characters.
	DecodeEscapedUnicode bool
}

// A Source supplies the current Settings. Implementations must return
// a snapshot that is safe for the engine to read for the duration of
// one request; Settings() is called once per request, which is what
// makes the configuration hot-reloadable.
type Source interface {
	Settings() *Settings
}

// Static wraps a fixed Settings value in a Source.
func Static(s *Settings) Source {
	return staticSource{s}
}

type staticSource struct {
	s *Settings
}

func (s staticSource) Settings() *Settings { return s.s }

// SourceFunc adapts an ordinary function to a Source.
type SourceFunc func() *Settings

// Settings calls f.
func (f SourceFunc) Settings() *Settings { return f() }

// FromEnv builds Settings from environment variables. Unset variables
// leave the corresponding zero value in place.
func FromEnv() *Settings {
	s := &Settings{
		Timeout:         time.Duration(getEnvInt("RESTFIRE_TIMEOUT_MS", 0)) * time.Millisecond,
		FollowRedirects: getEnvBool("RESTFIRE_FOLLOW_REDIRECTS", true),
		ProxyURL:        getEnv("RESTFIRE_PROXY", ""),
		ProxyStrictSSL:  getEnvBool("RESTFIRE_PROXY_STRICT_SSL", true),
		CookiesEnabled:  getEnvBool("RESTFIRE_COOKIES", false),
		CookieFile:      getEnv("RESTFIRE_COOKIE_FILE", ""),
		WorkspaceRoot:   getEnv("RESTFIRE_WORKSPACE_ROOT", ""),
	}
	s.DecodeEscapedUnicode = getEnvBool("RESTFIRE_DECODE_ESCAPED_UNICODE", false)
	if raw := os.Getenv("RESTFIRE_PROXY_EXCLUDE"); raw != "" {
		for _, h := range strings.Split(raw, ",") {
			h = strings.TrimSpace(h)
			if h != "" {
				s.ProxyExcludeHosts = append(s.ProxyExcludeHosts, h)
			}
		}
	}
	if raw := os.Getenv("RESTFIRE_DEFAULT_HEADERS"); raw != "" {
		s.DefaultHeaders = map[string]string{}
		for _, pair := range strings.Split(raw, ",") {
			name, value, ok := strings.Cut(pair, ":")
			if ok {
				s.DefaultHeaders[strings.TrimSpace(name)] = strings.TrimSpace(value)
			}
		}
	}
	return s
}

// EnsureCookieFile creates the cookie store file, and any missing
// parent directories, if the file does not exist yet. The engine calls
// it once per instantiation so the persistence collaborator always
// finds a file to load.
func EnsureCookieFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true":
		return true
	case "0", "false":
		return false
	}
	return def
}

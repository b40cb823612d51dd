// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package proxyselect decides whether a request is routed through a
// configured proxy.
//
// Exclusion matching is deliberately exact-equality based, not
// prefix or suffix based (so it is not NO_PROXY semantics): a request
// host without an explicit port matches only a bare-hostname entry
// spelled identically, and a request host with an explicit port
// matches either a bare-hostname entry (any port) or a hostname:port
// entry with the exact port. Entry order is irrelevant.
package proxyselect

import (
	"net/url"
	"strings"

	"github.com/restfire/restfire/request"
)

// A Selector holds the proxy configuration consulted per request.
type Selector struct {
	// ProxyURL is the configured proxy. Empty means no proxy. Only
	// http and https proxy URLs are honored; any other scheme is
	// treated as no proxy.
	ProxyURL string

	// ExcludeHosts lists hosts which bypass the proxy.
	ExcludeHosts []string
}

// Select returns the proxy URL to route the request through, or nil
// if the request should go direct (no proxy configured, unusable proxy
// scheme, or an excluded host). Malformed URLs never produce an error;
// they simply select no proxy.
func (s Selector) Select(requestURL string) *url.URL {
	if s.ProxyURL == "" {
		return nil
	}
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil
	}
	if s.excluded(u.Host) {
		return nil
	}
	p, err := url.Parse(s.ProxyURL)
	if err != nil {
		return nil
	}
	switch p.Scheme {
	case "http", "https":
		return p
	}
	return nil
}

func (s Selector) excluded(host string) bool {
	host = strings.ToLower(host)
	explicitPort := request.HasExplicitPort(host)
	hostname := host
	if explicitPort {
		hostname = host[:strings.LastIndex(host, ":")]
	}
	for _, entry := range s.ExcludeHosts {
		entry = strings.ToLower(entry)
		if !explicitPort {
			if entry == host {
				return true
			}
			continue
		}
		// entry without a port excludes every port on that hostname
		if !request.HasExplicitPort(entry) {
			if entry == hostname {
				return true
			}
			continue
		}
		if entry == host {
			return true
		}
	}
	return false
}

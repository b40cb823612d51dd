// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package proxyselect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_Select(t *testing.T) {
	t.Run("NoProxyConfigured", func(t *testing.T) {
		assert.Nil(t, Selector{}.Select("http://example.com/"))
	})
	t.Run("HTTPProxy", func(t *testing.T) {
		s := Selector{ProxyURL: "http://proxy.local:3128"}
		p := s.Select("http://example.com/")
		require.NotNil(t, p)
		assert.Equal(t, "proxy.local:3128", p.Host)
	})
	t.Run("HTTPSProxy", func(t *testing.T) {
		s := Selector{ProxyURL: "https://proxy.local:3129"}
		assert.NotNil(t, s.Select("http://example.com/"))
	})
	t.Run("NonHTTPSchemeIgnored", func(t *testing.T) {
		s := Selector{ProxyURL: "socks5://proxy.local:1080"}
		assert.Nil(t, s.Select("http://example.com/"))
	})
	t.Run("MalformedProxyURL", func(t *testing.T) {
		s := Selector{ProxyURL: "http://proxy.local:bad port"}
		assert.Nil(t, s.Select("http://example.com/"))
	})
}

func TestSelector_Exclusions(t *testing.T) {
	proxy := "http://proxy.local:3128"
	testCases := []struct {
		name     string
		excludes []string
		url      string
		direct   bool
	}{
		{"ExactHostname", []string{"example.com"}, "http://example.com/", true},
		{"CaseInsensitive", []string{"EXAMPLE.com"}, "http://Example.COM/", true},
		{"NoPortRequestNeverMatchesPortEntry", []string{"example.com:8080"}, "http://example.com/", false},
		{"NoPortRequestNeedsExactEntry", []string{"example.com.evil.net", "notexample.com"}, "http://example.com/", false},
		{"PortRequestMatchesBareHostname", []string{"example.com"}, "http://example.com:8080/", true},
		{"PortRequestMatchesExactPort", []string{"example.com:8080"}, "http://example.com:8080/", true},
		{"PortRequestRejectsWrongPort", []string{"example.com:9090"}, "http://example.com:8080/", false},
		{"OtherHostStillProxied", []string{"example.com"}, "http://other.example.com/", false},
		{"OrderIrrelevant", []string{"a.example.com", "example.com:8080", "example.com"}, "http://example.com:8080/", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := Selector{ProxyURL: proxy, ExcludeHosts: tc.excludes}
			p := s.Select(tc.url)
			if tc.direct {
				assert.Nil(t, p)
			} else {
				assert.NotNil(t, p)
			}
		})
	}
}

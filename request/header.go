// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "strings"

// A Header is a set of HTTP header fields which preserves the key
// spelling the user authored while answering lookups case-insensitively.
//
// Unlike http.Header from net/http, a Header never canonicalizes key
// casing, and it never holds two entries whose keys differ only by
// case: Set and Del locate an existing entry case-insensitively before
// mutating the map.
type Header map[string]string

// Get returns the value associated with key, matching the key
// case-insensitively. It returns "" if there is no such field.
func (h Header) Get(key string) string {
	v, _ := h.lookup(key)
	return v
}

// Has reports whether the header contains a field whose key equals key
// case-insensitively.
func (h Header) Has(key string) bool {
	_, ok := h.lookup(key)
	return ok
}

// Set associates value with key. If a field with the same key already
// exists under any spelling, its value is replaced in place and the
// existing spelling is kept; otherwise the field is added under the
// spelling given.
func (h Header) Set(key, value string) {
	if spelling, ok := h.spelling(key); ok {
		h[spelling] = value
		return
	}
	h[key] = value
}

// Del removes the field whose key equals key case-insensitively, if
// present.
func (h Header) Del(key string) {
	if spelling, ok := h.spelling(key); ok {
		delete(h, spelling)
	}
}

// Clone returns a copy of h, or nil if h is nil.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	h2 := make(Header, len(h))
	for k, v := range h {
		h2[k] = v
	}
	return h2
}

func (h Header) lookup(key string) (string, bool) {
	if v, ok := h[key]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func (h Header) spelling(key string) (string, bool) {
	if _, ok := h[key]; ok {
		return key, true
	}
	for k := range h {
		if strings.EqualFold(k, key) {
			return k, true
		}
	}
	return "", false
}

// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package auth

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// Digest returns the strategy for HTTP Digest authentication (RFC
// 7616, MD5). The authored header is left untouched on the initial
// exchange; when the server replies 401 with a WWW-Authenticate Digest
// challenge, Answer computes the credential header for exactly one
// retried exchange.
func Digest(user, password string) Strategy {
	return &digest{user: user, password: password}
}

type digest struct {
	user, password string
}

func (*digest) Authorize() string { return "" }

func (d *digest) Answer(method, uri string, resp *http.Response) (string, bool) {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return "", false
	}
	var challenge string
	for _, v := range resp.Header.Values("WWW-Authenticate") {
		if strings.HasPrefix(v, "Digest ") {
			challenge = strings.TrimPrefix(v, "Digest ")
			break
		}
	}
	if challenge == "" {
		return "", false
	}
	params := parseChallenge(challenge)
	nonce, ok := params["nonce"]
	if !ok {
		return "", false
	}
	cnonce := newCnonce()
	return d.header(method, uri, params["realm"], nonce, params["opaque"], params["qop"], cnonce), true
}

// header assembles the Authorization value. qop is the server's
// offered list; auth is selected when offered, otherwise the RFC 2069
// compatibility form is used. The nonce count is always 00000001
// because the strategy retries exactly once.
func (d *digest) header(method, uri, realm, nonce, opaque, qop, cnonce string) string {
	useQop := false
	for _, q := range strings.Split(qop, ",") {
		if strings.TrimSpace(q) == "auth" {
			useQop = true
			break
		}
	}
	ha1 := md5hex(d.user + ":" + realm + ":" + d.password)
	ha2 := md5hex(method + ":" + uri)
	var response string
	if useQop {
		response = md5hex(ha1 + ":" + nonce + ":00000001:" + cnonce + ":auth:" + ha2)
	} else {
		response = md5hex(ha1 + ":" + nonce + ":" + ha2)
	}
	var b strings.Builder
	fmt.Fprintf(&b, `Digest username=%q, realm=%q, nonce=%q, uri=%q`, d.user, realm, nonce, uri)
	if useQop {
		fmt.Fprintf(&b, `, qop=auth, nc=00000001, cnonce=%q`, cnonce)
	}
	fmt.Fprintf(&b, `, response=%q, algorithm=MD5`, response)
	if opaque != "" {
		fmt.Fprintf(&b, `, opaque=%q`, opaque)
	}
	return b.String()
}

// parseChallenge splits a Digest challenge into its key="value"
// parameters, tolerating unquoted values and stray whitespace.
func parseChallenge(challenge string) map[string]string {
	params := make(map[string]string)
	for _, part := range splitChallenge(challenge) {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		params[strings.ToLower(key)] = value
	}
	return params
}

// splitChallenge splits on commas outside quoted strings.
func splitChallenge(challenge string) []string {
	var parts []string
	var b strings.Builder
	quoted := false
	for _, r := range challenge {
		switch {
		case r == '"':
			quoted = !quoted
			b.WriteRune(r)
		case r == ',' && !quoted:
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func newCnonce() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

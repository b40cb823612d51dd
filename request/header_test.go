// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeader_Get(t *testing.T) {
	h := Header{"Content-Type": "text/plain", "x-api-key": "s3cret"}
	assert.Equal(t, "text/plain", h.Get("Content-Type"))
	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Equal(t, "text/plain", h.Get("CONTENT-TYPE"))
	assert.Equal(t, "s3cret", h.Get("X-Api-Key"))
	assert.Equal(t, "", h.Get("Authorization"))
}

func TestHeader_Has(t *testing.T) {
	h := Header{"Authorization": "Basic creds"}
	assert.True(t, h.Has("authorization"))
	assert.True(t, h.Has("Authorization"))
	assert.False(t, h.Has("Accept"))
}

func TestHeader_Set(t *testing.T) {
	t.Run("PreservesExistingSpelling", func(t *testing.T) {
		h := Header{"content-type": "text/plain"}
		h.Set("Content-Type", "application/json")
		assert.Len(t, h, 1)
		assert.Equal(t, "application/json", h["content-type"])
	})
	t.Run("NewKeyKeepsGivenSpelling", func(t *testing.T) {
		h := Header{}
		h.Set("X-Custom", "1")
		assert.Equal(t, "1", h["X-Custom"])
	})
}

func TestHeader_Del(t *testing.T) {
	h := Header{"Accept-Encoding": "gzip"}
	h.Del("accept-encoding")
	assert.Empty(t, h)
	h.Del("accept-encoding") // absent key is a no-op
}

func TestHeader_Clone(t *testing.T) {
	var nilHeader Header
	assert.Nil(t, nilHeader.Clone())
	h := Header{"Accept": "*/*"}
	h2 := h.Clone()
	h2.Set("Accept", "text/html")
	assert.Equal(t, "*/*", h.Get("Accept"))
	assert.Equal(t, "text/html", h2.Get("Accept"))
}

// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restfire/restfire/request"
)

var _ Doer = (*Client)(nil)

func TestDoer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("via seam"))
	}))
	defer server.Close()

	var d Doer = &Client{}
	req, err := request.New("GET", server.URL, nil)
	require.NoError(t, err)

	resp, err := d.Do(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "via seam", resp.Body)
}

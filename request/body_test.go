// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyBytes(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		b, err := BodyBytes(nil)
		assert.NoError(t, err)
		assert.Nil(t, b)
	})
	t.Run("String", func(t *testing.T) {
		b, err := BodyBytes("hello")
		assert.NoError(t, err)
		assert.Equal(t, []byte("hello"), b)
	})
	t.Run("ByteSlice", func(t *testing.T) {
		in := []byte{1, 2, 3}
		b, err := BodyBytes(in)
		assert.NoError(t, err)
		assert.Equal(t, in, b)
	})
	t.Run("Reader", func(t *testing.T) {
		b, err := BodyBytes(strings.NewReader("streamed"))
		assert.NoError(t, err)
		assert.Equal(t, []byte("streamed"), b)
	})
	t.Run("ReadCloser", func(t *testing.T) {
		rc := &closeRecorder{Reader: bytes.NewBufferString("streamed")}
		b, err := BodyBytes(rc)
		assert.NoError(t, err)
		assert.Equal(t, []byte("streamed"), b)
		assert.True(t, rc.closed)
	})
	t.Run("ReadError", func(t *testing.T) {
		b, err := BodyBytes(io.MultiReader(strings.NewReader("par"), failReader{}))
		assert.Nil(t, b)
		assert.EqualError(t, err, "read failed")
	})
	t.Run("BadType", func(t *testing.T) {
		b, err := BodyBytes(42)
		assert.Nil(t, b)
		assert.Error(t, err)
	})
}

func TestReusable(t *testing.T) {
	s := Reusable([]byte("one shot"))
	b, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "one shot", string(b))
	// drained: further reads see EOF
	b, err = io.ReadAll(s)
	require.NoError(t, err)
	assert.Empty(t, b)
	require.NoError(t, s.Close())
	n, err := s.Read(make([]byte, 1))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
	// a fresh wrap reads from the start again
	b, err = io.ReadAll(Reusable([]byte("one shot")))
	require.NoError(t, err)
	assert.Equal(t, "one shot", string(b))
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

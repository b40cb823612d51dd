// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"errors"
	"io"
)

const badBodyTypeMsg = "restfire/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// BodyBytes converts a generic body value to a byte slice for use as a
// wire-ready request body. It is the buffering adapter for consume-once
// streams: a reader body is drained exactly once, and the caller owns
// the resulting buffer.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. The conversion logic is:
//
// • If body is nil, a nil byte slice and no error is returned.
//
// • If body is a []byte, body itself and no error is returned.
//
// • If body is a string, the built-in conversion from string to byte
// slice, and no error, is returned.
//
// • If body is an io.Reader or io.ReadCloser, the result of reading
// the whole contents of the reader (and closing it if it implements
// Closer) is returned. If reading from the reader (and closing it if
// applicable) causes an error, the return value is a nil byte slice
// and the error.
//
// • If body is any other type than those listed above, a nil byte
// slice and an error is returned.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}

// Reusable wraps b in a fresh consume-once byte stream. Each call
// returns an independent reader positioned at the start of b; any
// single consumer drains it once, and draining it again yields EOF.
// Re-reading the same bytes requires calling Reusable again.
func Reusable(b []byte) io.ReadCloser {
	return &onceStream{r: bytes.NewReader(b)}
}

type onceStream struct {
	r      *bytes.Reader
	closed bool
}

func (s *onceStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, io.EOF
	}
	return s.r.Read(p)
}

func (s *onceStream) Close() error {
	s.closed = true
	return nil
}

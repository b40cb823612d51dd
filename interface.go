// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package restfire

import (
	"context"

	"github.com/restfire/restfire/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do executes a user-authored request and returns the materialized
// response (and error, if any). Client implements the Doer interface,
// and any other Doer implementation must behave substantially the same
// as Client.Do.
type Doer interface {
	Do(ctx context.Context, req *request.Request) (*Response, error)
}

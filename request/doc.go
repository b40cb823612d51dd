// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the user-authored HTTP request model consumed
by the restfire engine.

A Request describes what the user wrote: a method, a URL, a header set
whose key spellings are preserved exactly as authored, and an optional
body. The body may be a string, a byte slice, or a consume-once byte
stream; BodyBytes materializes any of these into a buffer before the
transport sees it.

A SerializedRequest is the persistence-facing variant of Request: it is
identical except for an added start timestamp.
*/
package request

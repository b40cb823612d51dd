// Copyright 2025 The restfire Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package restfire executes ad-hoc, user-authored HTTP requests and
materializes fully-typed responses.

Create a Client to begin executing requests.

	client := &restfire.Client{
		Config: config.Static(&config.Settings{
			Timeout:         10 * time.Second,
			FollowRedirects: true,
		}),
	}
	req, err := request.New("GET", "https://www.example.com", nil)
	...
	resp, err := client.Do(ctx, req)

The engine turns the authored request into a fully resolved execution
plan (authentication rewriting, proxy selection, client certificates,
cookie persistence, compression negotiation), submits it, measures the
wire-level byte counts and timing phases, and reconstructs a Response
with the declared charset decoded and the originally-sent header
casing restored.

Executions can be tracked in a lifecycle.Store for UI correlation and
cooperative cancellation:

	store := lifecycle.NewStore()
	client.Lifecycle = store
	go client.DoWithID(ctx, id, req)
	...
	store.Cancel(id) // advisory; polled by the renderer

To hook into the fine-grained details of an execution, install a
handler into the appropriate handler chain:

	handlers := &restfire.HandlerGroup{}
	handlers.PushBack(restfire.AfterAttempt, restfire.HandlerFunc(
		func(_ restfire.Event, e *restfire.Execution) {
			log.Printf("%s %s finished", e.Request.Method, e.Request.URL)
		}),
	)
	client.Handlers = handlers

The engine is not a general-purpose HTTP client library: it performs a
single exchange per request (plus at most one digest challenge-response
retry) and leaves connection management to the transport behind the
HTTPDoer seam.
*/
package restfire

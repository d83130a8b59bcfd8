// Package coach implements the Brutalytics strategic-coach conversation:
// a Gemini-backed response interpreter with a strict-then-heuristic parser
// and an always-renderable offline fallback.
package coach

import "errors"

// The coach failure taxonomy. All three are recovered at the coach boundary:
// the conversation always yields a renderable response, and these errors only
// describe how the response was degraded.
var (
	// ErrNoAPIKey means no usable Gemini credential is configured.
	ErrNoAPIKey = errors.New("gemini api key not configured")

	// ErrRemoteUnavailable means the generative endpoint could not be
	// reached or answered with a non-success status.
	ErrRemoteUnavailable = errors.New("gemini endpoint unavailable")

	// ErrMalformedResponse means the endpoint answered, but neither strict
	// decoding nor heuristic extraction recovered a usable coach response.
	ErrMalformedResponse = errors.New("malformed coach response")
)

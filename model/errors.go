package model

import "errors"

// Protocol violations. The UI disables the matching affordances, so reaching
// one of these means a wiring bug rather than a runtime condition.
var (
	ErrProposalPending = errors.New("a tool proposal is awaiting confirmation")
	ErrNoProposal      = errors.New("no tool proposal is awaiting confirmation")
	ErrTurnInFlight    = errors.New("a request is already in flight")
	ErrGateArmed       = errors.New("pending action gate is already armed")
	ErrEmptyMessage    = errors.New("message is empty")
)

// ErrEmptyResponse is reported when the backend answered without a body.
var ErrEmptyResponse = errors.New("backend returned an empty response")

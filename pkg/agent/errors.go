package agent

import "errors"

// ErrNoQueries indicates the query generation stage produced a parseable
// response with an empty query list. This is fatal for the run.
var ErrNoQueries = errors.New("query generation returned no queries")

// ErrNoFollowUp indicates the reflection stage declared research
// insufficient while proposing zero follow-up queries, leaving the loop
// with no way to make progress.
var ErrNoFollowUp = errors.New("reflection declared research insufficient but proposed no follow-up queries")

// StageError reports a fatal run failure together with the stage at which
// it occurred.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return "stage " + string(e.Stage) + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

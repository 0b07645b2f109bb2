// Package retry runs an operation under a fixed attempt cap.
//
// Attempts are immediate: there is no backoff and no classification of
// errors into transient and permanent, every failure consumes one attempt.
package retry

// DefaultMaxAttempts is the attempt cap used when none is configured.
const DefaultMaxAttempts = 3

// Result is the outcome of Do. Err is nil when Value came from a successful
// attempt; otherwise it holds the error of the last attempt.
type Result[T any] struct {
	Value    T
	Attempts int
	Err      error
}

// OK reports whether one of the attempts succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Option configures Do.
type Option func(*settings)

type settings struct {
	onFailure func(attempt int, err error)
}

// OnFailure registers a hook invoked after every failed attempt, including
// the last one. Attempts are numbered from 1.
func OnFailure(fn func(attempt int, err error)) Option {
	return func(s *settings) { s.onFailure = fn }
}

// Do calls op until it succeeds or maxAttempts calls have failed. op receives
// the 1-based attempt number. A maxAttempts below 1 is treated as 1.
// Do never panics on op errors and never returns more attempts than the cap.
func Do[T any](maxAttempts int, op func(attempt int) (T, error), opts ...Option) Result[T] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var res Result[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res.Attempts = attempt
		value, err := op(attempt)
		if err == nil {
			res.Value = value
			res.Err = nil
			return res
		}
		res.Err = err
		if s.onFailure != nil {
			s.onFailure(attempt, err)
		}
	}
	return res
}

package checker

import "fmt"

// FetchError covers network, timeout and render failures. It is
// recoverable by the scheduler's next invocation, never retried
// in-process.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError covers unwritable state storage. Unreadable prior
// state is not an error at all, it downgrades to the default state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("state %s: %s", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotifyError covers mail transport and auth failures. By the time it
// surfaces the run's state has already been persisted, so a permanently
// broken transport cannot make the same transition fire forever.
type NotifyError struct {
	Err error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notify: %s", e.Err)
}

func (e *NotifyError) Unwrap() error { return e.Err }

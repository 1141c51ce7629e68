package state

import "errors"

var (
	ErrNotInitialized = errors.New("state: machine used before Initialize")
	ErrDisposed       = errors.New("state: machine used after Dispose")
	ErrEmptyName      = errors.New("state: empty state name")
	ErrEmptyChannel   = errors.New("state: empty channel name")
	ErrUnknownChannel = errors.New("state: unknown channel")
	ErrDuplicate      = errors.New("state: duplicate state name")
	ErrUnknownState   = errors.New("state: unknown state")
	ErrNonFinite      = errors.New("state: non-finite number")
)

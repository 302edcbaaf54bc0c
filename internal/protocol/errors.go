package protocol

import "errors"

var (
	ErrPendingOverflow = errors.New("protocol: pending tail exceeds limit")
	ErrNilHandler      = errors.New("protocol: nil handler")
)

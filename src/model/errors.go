package model

import "errors"

// ErrNotActive is returned by stores when a write targets a signal that is
// not (or no longer) in the active set.
var ErrNotActive = errors.New("signal is not in the active set")

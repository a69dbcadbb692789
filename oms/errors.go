package oms

import "errors"

// ErrUnknownOrder is returned by Router.Cancel when ClOrdID is not tracked
// by the Store (never routed, or already GC'd from a terminal state).
var ErrUnknownOrder = errors.New("oms: unknown ClOrdID")

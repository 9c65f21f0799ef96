package book

import "errors"

// ErrOrderNotFound is returned by ModifyOrder when the id is not
// currently resting in the book. It is the only observable error the
// core's public contract produces.
var ErrOrderNotFound = errors.New("book: order not found")

package domain

import "errors"

// ErrIndexOutOfRange is returned when an index or range falls outside the collection bounds.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrCollectionClosed is returned when a mutation is attempted after Close.
var ErrCollectionClosed = errors.New("collection closed")

package ports

import "errors"

// Sentinel errors shared by every storage adapter; use cases translate them
// into player-facing outcomes (unknown player, concurrent update).
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

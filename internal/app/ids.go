package app

import "github.com/google/uuid"

// newGameID returns the identifier under which a game is registered.
// Game IDs appear in URLs, so they use the standard UUIDv4 text form.
func newGameID() string { return uuid.NewString() }

package cap

import "errors"

// ErrUnknownTerm is returned when a terminal type cannot be resolved to a
// terminfo entry. See spec.md §7.
var ErrUnknownTerm = errors.New("cap: unknown terminal type")

package sector

import "errors"

var (
	ErrInvalidParams = errors.New("invalid sector parameters")
	ErrUnknownPreset = errors.New("unknown sector preset")
	ErrEmptyArc      = errors.New("arc has no area")
)

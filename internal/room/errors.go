package room

import "errors"

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomFull             = errors.New("room full")
	ErrRoomEnded            = errors.New("room ended")
	ErrInvalidKey           = errors.New("invalid key")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNameConflict         = errors.New("room name in use")
	ErrNotHost              = errors.New("host key required")
)

package apperror

import "errors"

var (
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrNoCaptures   = errors.New("move captures no disks")
	ErrRoomClosed   = errors.New("room is closed")
)

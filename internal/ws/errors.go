package ws

import "errors"

var ErrUnknownType = errors.New("unknown type")
var ErrBadRoomStatus = errors.New("bad room status")

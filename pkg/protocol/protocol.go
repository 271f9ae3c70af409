package protocol

import "encoding/json"

// Message type tags. Client→server: join, input, leave.
// Server→client: joined, state, roomEnded, error.
const (
	MsgJoin      = "join"
	MsgInput     = "input"
	MsgLeave     = "leave"
	MsgJoined    = "joined"
	MsgState     = "state"
	MsgRoomEnded = "roomEnded"
	MsgError     = "error"
)

// Error kinds carried by ErrorEvent, mirroring the join/input failure
// taxonomy.
const (
	KindRoomNotFound         = "RoomNotFound"
	KindRoomFull             = "RoomFull"
	KindRoomEnded            = "RoomEnded"
	KindInvalidKey           = "InvalidKey"
	KindAuthenticationFailed = "AuthenticationFailed"
	KindInvalidInput         = "InvalidInput"
	KindNameConflict         = "NameConflict"
)

// Envelope is the one frame shape on the wire: a type tag plus the raw
// payload bytes for that tag.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

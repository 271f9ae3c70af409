package protocol

// Client → server payloads.

type Join struct {
	Room      string `json:"room"`
	Name      string `json:"name,omitempty"`
	Key       string `json:"key,omitempty"`
	Spectator bool   `json:"spectator,omitempty"`
}

type Input struct {
	TargetX float64 `json:"targetX"`
	TargetY float64 `json:"targetY"`
}

// Leave has no payload; the bare tag is the message.

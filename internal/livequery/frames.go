package livequery

// Wire frames exchanged over the websocket transport.

const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"

	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

// ClientFrame is sent by clients. ID is chosen by the client and echoed on
// every frame for that subscription.
type ClientFrame struct {
	Op         string     `json:"op"`
	ID         string     `json:"id"`
	Collection Collection `json:"collection,omitempty"`
	Field      string     `json:"field,omitempty"`
	Value      string     `json:"value,omitempty"`
}

func (f ClientFrame) Query() Query {
	return Query{Collection: f.Collection, Field: f.Field, Value: f.Value}
}

type ServerFrame struct {
	Type    string      `json:"type"`
	ID      string      `json:"id"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

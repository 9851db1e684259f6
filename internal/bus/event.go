package bus

import "time"

// Event is a messaging-core announcement delivered to UI shells.
//
// Kinds are dot-namespaced: "directory.refreshed", "thread.loaded",
// "thread.read_marked", "message.send_ack", "message.send_failed".
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

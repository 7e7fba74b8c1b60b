package model

// Notification is the outbound chat message composed for a single event.
// It is built and sent once, never stored or retried.
type Notification struct {
	EventID string
	Color   string
	Message string
	Notify  bool
}

package chat

import "time"

// Message is an immutable chat entry created by a Room on publish.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	RoomID    string    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
}

package entity

// ChatMessage is one line in a bottle's chat. Messages are append-only and
// ordered for display by Timestamp ascending.
type ChatMessage struct {
	SenderID string `json:"sender_id" firestore:"senderId"`
	Text     string `json:"text" firestore:"text"`
	// Timestamp is the sender's wall clock at send time, in milliseconds.
	Timestamp int64 `json:"timestamp" firestore:"timestamp"`
}

// DedupeKey identifies a chat message for at-least-once delivery
// suppression. The change stream may replay a message; two events with the
// same (timestamp, text) pair are the same message.
type DedupeKey struct {
	Timestamp int64
	Text      string
}

func (m *ChatMessage) Key() DedupeKey {
	return DedupeKey{Timestamp: m.Timestamp, Text: m.Text}
}

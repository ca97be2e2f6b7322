package conversation

// Role identifies who produced a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// Message is one turn of a conversation. Language is empty for user turns.
type Message struct {
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Language  string `json:"language"`
	Timestamp int64  `json:"timestamp"`
}

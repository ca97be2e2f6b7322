package chat

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/babel/internal/conversation"
)

const replyPromptTemplate = "You are a helpful AI assistant. Respond naturally in %s. Do not repeat yourself.\n\nConversation:\n%sUser: %s\nAI:"

const translatePromptTemplate = "Translate the following text to English. Only provide the translation, nothing else:\n\n%s"

// BuildTranscript renders prior turns as "User: ..." / "AI: ..." lines.
// Messages with any other role are skipped.
func BuildTranscript(history []conversation.Message) string {
	var b strings.Builder
	for _, msg := range history {
		switch msg.Role {
		case conversation.RoleUser:
			b.WriteString("User: ")
		case conversation.RoleAI:
			b.WriteString("AI: ")
		default:
			continue
		}
		b.WriteString(msg.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func replyPrompt(targetLanguage string, history []conversation.Message, text string) string {
	return fmt.Sprintf(replyPromptTemplate, targetLanguage, BuildTranscript(history), text)
}

func translatePrompt(text string) string {
	return fmt.Sprintf(translatePromptTemplate, text)
}

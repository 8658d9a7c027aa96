package llm

import (
	"fmt"

	"google.golang.org/genai"
)

// convertMessagesToGemini converts []Message to Gemini Content format.
// System messages are extracted separately for use with SystemInstruction.
// Returns the user/model messages, the first system message content (if any), and an error.
func convertMessagesToGemini(messages []Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	// Check that at least one message has role "user"
	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == "user" {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue // Don't add system messages to contents
		}

		var geminiRole string
		switch msg.Role {
		case "assistant":
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser // Default to user for unknown roles
		}

		part := genai.NewPartFromText(msg.Content)
		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{part},
		})
	}

	return contents, systemText, nil
}

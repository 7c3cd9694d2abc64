package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/techcorp/website/internal/core"
)

// GeminiUpstream streams completions from the Gemini API.
type GeminiUpstream struct {
	client *genai.Client
	model  string
}

func NewGeminiUpstream(ctx context.Context, apiKey, model string) (*GeminiUpstream, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiUpstream{client: client, model: model}, nil
}

func (g *GeminiUpstream) Close() error {
	return g.client.Close()
}

// StreamChat sends the last turn of history against the prior turns and
// emits each text fragment as it arrives. Gemini uses "model" where the
// chat protocol says "assistant".
func (g *GeminiUpstream) StreamChat(ctx context.Context, history []core.ChatTurn, emit func(text string) error) error {
	if len(history) == 0 {
		return errors.New("empty history")
	}

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(domainContext)},
	}

	chatSession := model.StartChat()
	for _, turn := range history[:len(history)-1] {
		role := "user"
		if turn.Role == string(core.RoleAssistant) {
			role = "model"
		}
		chatSession.History = append(chatSession.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	last := history[len(history)-1]
	iter := chatSession.SendMessageStream(ctx, genai.Text(last.Content))

	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}

		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				text, ok := part.(genai.Text)
				if !ok || text == "" {
					continue
				}
				if err := emit(string(text)); err != nil {
					return err
				}
			}
		}
	}
}

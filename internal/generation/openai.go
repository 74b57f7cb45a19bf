// Package generation wraps the OpenAI API for story text and speech.
package generation

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/storyverse/storyverse/internal/config"
	"github.com/storyverse/storyverse/internal/models"
)

const systemPrompt = `You are a creative storyteller. Respond with a JSON object
containing "title", "content", "summary" and "imagePrompts" (an array of 2-3
short visual scene descriptions drawn from the story).`

// Client calls OpenAI chat completions and text-to-speech.
type Client struct {
	api         *openai.Client
	chatModel   string
	speechVoice string
}

func New(cfg config.OpenAI) *Client {
	return &Client{
		api:         openai.NewClient(cfg.APIKey),
		chatModel:   cfg.ChatModel,
		speechVoice: cfg.SpeechVoice,
	}
}

// GenerateStory asks the chat model for a story matching the settings. The
// model runs in JSON mode so the response parses into models.GeneratedStory.
func (c *Client) GenerateStory(ctx context.Context, settings models.StorySettings) (*models.GeneratedStory, error) {
	const op = "generation.GenerateStory"

	userPrompt := fmt.Sprintf(
		"Write a %s story in the %s genre about the theme of %s. "+
			"The main character is %s and the story is set in %s.",
		settings.StoryLength, settings.Genre, settings.Theme,
		settings.Character, settings.Setting)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: empty completion", op)
	}

	var story models.GeneratedStory
	if err = json.Unmarshal([]byte(resp.Choices[0].Message.Content), &story); err != nil {
		return nil, fmt.Errorf("%s: parse completion: %w", op, err)
	}
	return &story, nil
}

// GenerateSpeech renders text to MP3 and returns it as a data URL, ready to
// drop into an <audio> element.
func (c *Client) GenerateSpeech(ctx context.Context, text string) (string, error) {
	const op = "generation.GenerateSpeech"

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.SpeechVoice(c.speechVoice),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Close()
	}()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(audio), nil
}

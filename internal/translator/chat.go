package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"paper-translator/internal/types"
)

// chatModel is the part of an Eino chat model the ChatClient uses.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatConfig holds configuration options for creating a ChatClient
type ChatConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	SourceLang string
	TargetLang string
	Timeout    time.Duration
}

// ChatClient translates with an OpenAI-compatible chat model.
type ChatClient struct {
	model      chatModel
	sourceLang string
	targetLang string
}

// NewChatClient creates a ChatClient backed by an Eino OpenAI chat model.
func NewChatClient(ctx context.Context, cfg ChatConfig) (*ChatClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		Timeout: timeout,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}

	cm, err := openai.NewChatModel(ctx, chatModelConfig)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}
	return newChatClient(cm, cfg.SourceLang, cfg.TargetLang), nil
}

func newChatClient(m chatModel, sourceLang, targetLang string) *ChatClient {
	return &ChatClient{model: m, sourceLang: sourceLang, targetLang: targetLang}
}

// Translate sends text as a single chat completion.
func (c *ChatClient) Translate(ctx context.Context, text string) (string, error) {
	resp, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(c.buildSystemPrompt()),
		schema.UserMessage(text),
	})
	if err != nil {
		return "", types.NewAppError(types.ErrTranslation, "chat model request failed", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", types.NewAppError(types.ErrTranslation, "chat model returned no content", nil)
	}
	return strings.TrimSpace(resp.Content), nil
}

// buildSystemPrompt creates the system prompt for paper text translation
func (c *ChatClient) buildSystemPrompt() string {
	source := "the source language"
	if c.sourceLang != "" {
		source = languageName(c.sourceLang)
	}
	return fmt.Sprintf(`You are a professional translator specializing in academic and scientific papers.
Translate the user's text from %s to %s.

RULES:
1. Output only the translated text, with no explanations or notes.
2. Preserve mathematical formulas, symbols and citation markers such as [12] exactly.
3. Paragraphs are separated by a blank line. Keep the same number of paragraphs in the same order.`,
		source, languageName(c.targetLang))
}

var languageNames = map[string]string{
	"EN": "English",
	"JA": "Japanese",
	"ZH": "Chinese",
	"DE": "German",
	"FR": "French",
	"ES": "Spanish",
	"IT": "Italian",
	"KO": "Korean",
	"PT": "Portuguese",
	"RU": "Russian",
}

func languageName(code string) string {
	base := strings.ToUpper(code)
	if i := strings.IndexByte(base, '-'); i > 0 {
		base = base[:i]
	}
	if name, ok := languageNames[base]; ok {
		return name
	}
	return code
}

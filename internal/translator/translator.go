// Package translator sends text chunks to a translation service.
package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paper-translator/internal/config"
	"paper-translator/internal/logger"
	"paper-translator/internal/types"
)

// Translator translates one piece of text. Implementations make exactly one
// request per call.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// New builds the translator selected by cfg, paced by cfg.TranslateInterval.
func New(ctx context.Context, cfg *config.Config) (Translator, error) {
	var t Translator
	switch cfg.Translator {
	case config.TranslatorDeepL:
		t = NewDeepLClient(DeepLConfig{
			URL:        cfg.DeepLURL,
			APIKey:     cfg.DeepLAPIKey,
			SourceLang: cfg.SourceLang,
			TargetLang: cfg.TargetLang,
			Timeout:    cfg.TranslateTimeout,
		})
	case config.TranslatorOpenAI:
		chat, err := NewChatClient(ctx, ChatConfig{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			SourceLang: cfg.SourceLang,
			TargetLang: cfg.TargetLang,
			Timeout:    cfg.TranslateTimeout,
		})
		if err != nil {
			return nil, err
		}
		t = chat
	default:
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown translator", string(cfg.Translator), nil)
	}
	return NewPaced(t, cfg.TranslateInterval), nil
}

// TranslateChunks translates chunks in order, one request at a time.
// Whitespace-only chunks are passed through without a request. The first
// failure discards every chunk translated so far.
func TranslateChunks(ctx context.Context, t Translator, chunks []string) ([]string, error) {
	out := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			out = append(out, chunk)
			continue
		}

		start := time.Now()
		translated, err := t.Translate(ctx, chunk)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrTranslation, "translation failed",
				fmt.Sprintf("chunk %d of %d", i+1, len(chunks)), err)
		}
		logger.Debug("chunk translated",
			logger.Int("chunk", i+1),
			logger.Int("total", len(chunks)),
			logger.Int("chars", len([]rune(chunk))),
			logger.Duration("elapsed", time.Since(start)))
		out = append(out, translated)
	}
	return out, nil
}

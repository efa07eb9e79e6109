package translator

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"paper-translator/internal/types"
)

// Paced spaces the requests of a Translator at least interval apart.
type Paced struct {
	next    Translator
	limiter *rate.Limiter
}

// NewPaced wraps t so consecutive calls start at least interval apart.
// A zero interval disables pacing.
func NewPaced(t Translator, interval time.Duration) *Paced {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Paced{next: t, limiter: rate.NewLimiter(limit, 1)}
}

// Translate waits for the limiter, then delegates.
func (p *Paced) Translate(ctx context.Context, text string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", types.NewAppError(types.ErrTranslation, "translation cancelled", err)
	}
	return p.next.Translate(ctx, text)
}

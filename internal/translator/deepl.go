package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paper-translator/internal/logger"
	"paper-translator/internal/types"
)

// DefaultTimeout is the per-request timeout for translation calls.
const DefaultTimeout = 30 * time.Second

// StatusQuotaExceeded is DeepL's "quota exceeded" status code.
const StatusQuotaExceeded = 456

// DeepLConfig holds configuration options for creating a DeepLClient
type DeepLConfig struct {
	URL        string
	APIKey     string
	SourceLang string
	TargetLang string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// DeepLClient calls the DeepL v2 translate endpoint.
type DeepLClient struct {
	url        string
	apiKey     string
	sourceLang string
	targetLang string
	client     *http.Client
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// NewDeepLClient creates a new DeepLClient with the given configuration
func NewDeepLClient(cfg DeepLConfig) *DeepLClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &DeepLClient{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		sourceLang: cfg.SourceLang,
		targetLang: cfg.TargetLang,
		client:     httpClient,
	}
}

// Translate sends text as a single request.
func (c *DeepLClient) Translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", c.targetLang)
	if c.sourceLang != "" {
		form.Set("source_lang", c.sourceLang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", types.NewAppError(types.ErrTranslation, "failed to create HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error("DeepL request failed", err)
		return "", types.NewAppError(types.ErrTranslation, "DeepL request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrTranslation, "failed to read DeepL response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", handleDeepLHTTPError(resp.StatusCode, body)
	}

	var parsed deeplResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", types.NewAppError(types.ErrTranslation, "failed to parse DeepL response", err)
	}
	if len(parsed.Translations) == 0 {
		return "", types.NewAppError(types.ErrTranslation, "DeepL returned no translations", nil)
	}
	return parsed.Translations[0].Text, nil
}

// handleDeepLHTTPError maps a non-200 status to an AppError.
func handleDeepLHTTPError(statusCode int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
	}
	details := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		details = errResp.Message
	}

	switch statusCode {
	case StatusQuotaExceeded:
		return types.NewAppErrorWithDetails(types.ErrTranslationQuota, "DeepL quota exceeded", details, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrTranslation, "DeepL authentication failed", "invalid API key or unauthorized access", nil)
	case http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(types.ErrTranslation, "DeepL rate limit exceeded", details, nil)
	case http.StatusRequestEntityTooLarge:
		return types.NewAppErrorWithDetails(types.ErrTranslation, "DeepL request too large", details, nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrTranslation, "DeepL request failed", fmt.Sprintf("status %d: %s", statusCode, details), nil)
	}
}

package translator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-translator/internal/types"
)

func newDeepL(url string) *DeepLClient {
	return NewDeepLClient(DeepLConfig{
		URL:        url,
		APIKey:     "secret",
		SourceLang: "EN",
		TargetLang: "JA",
	})
}

func TestDeepLClient_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "DeepL-Auth-Key secret", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "Hello world.\n\nSecond.", r.PostForm.Get("text"))
		assert.Equal(t, "EN", r.PostForm.Get("source_lang"))
		assert.Equal(t, "JA", r.PostForm.Get("target_lang"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"translations":[{"detected_source_language":"EN","text":"こんにちは世界。\n\n二番目。"}]}`)
	}))
	defer server.Close()

	out, err := newDeepL(server.URL).Translate(context.Background(), "Hello world.\n\nSecond.")

	require.NoError(t, err)
	assert.Equal(t, "こんにちは世界。\n\n二番目。", out)
}

func TestDeepLClient_OmitsEmptySourceLang(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		_, present := r.PostForm["source_lang"]
		assert.False(t, present)
		io.WriteString(w, `{"translations":[{"text":"ok"}]}`)
	}))
	defer server.Close()

	c := NewDeepLClient(DeepLConfig{URL: server.URL, APIKey: "k", TargetLang: "JA"})
	_, err := c.Translate(context.Background(), "x")
	require.NoError(t, err)
}

func TestDeepLClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode types.ErrorCode
		wantMsg  string
	}{
		{"quota", StatusQuotaExceeded, `{"message":"Quota Exceeded"}`, types.ErrTranslationQuota, "quota"},
		{"forbidden", http.StatusForbidden, `{"message":"Wrong endpoint"}`, types.ErrTranslation, "authentication"},
		{"rate limited", http.StatusTooManyRequests, ``, types.ErrTranslation, "rate limit"},
		{"server error", http.StatusInternalServerError, `oops`, types.ErrTranslation, "status 500: oops"},
		{"bad json", http.StatusOK, `{not json`, types.ErrTranslation, "parse"},
		{"no translations", http.StatusOK, `{"translations":[]}`, types.ErrTranslation, "no translations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			out, err := newDeepL(server.URL).Translate(context.Background(), "text")

			require.Error(t, err)
			assert.Empty(t, out)
			assert.Equal(t, tt.wantCode, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestDeepLClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewDeepLClient(DeepLConfig{URL: server.URL, APIKey: "k", TargetLang: "JA", Timeout: 50 * time.Millisecond})
	_, err := c.Translate(context.Background(), "text")

	require.Error(t, err)
	assert.Equal(t, types.ErrTranslation, types.CodeOf(err))
}

package render

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-translator/internal/types"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		content   *Content
		wantPages int
	}{
		{
			name: "body and references",
			content: &Content{
				Title:         "Attention ist alles",
				OriginalTitle: "Attention Is All You Need",
				Paragraphs:    []string{"Erster Absatz.", "Zweiter Absatz mit Umlauten: äöü."},
				References:    []string{`[1] "Long short-term memory" (1997)`},
			},
			wantPages: 2,
		},
		{
			name:      "body only",
			content:   &Content{Paragraphs: []string{"Only a paragraph."}},
			wantPages: 1,
		},
		{
			name:      "empty",
			content:   &Content{},
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewRenderer("").Render(tt.content)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

			pages, err := api.PageCount(bytes.NewReader(out), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, pages)
		})
	}
}

func TestRender_MissingFont(t *testing.T) {
	r := NewRenderer(filepath.Join(t.TempDir(), "missing.ttf"))

	out, err := r.Render(&Content{Paragraphs: []string{"text"}})

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Equal(t, types.ErrRender, types.CodeOf(err))
}

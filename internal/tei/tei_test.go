package tei

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-translator/internal/types"
)

func loadSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.tei.xml"))
	require.NoError(t, err)
	return data
}

func TestParse_BodyParagraphs(t *testing.T) {
	doc, err := Parse(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Recurrent models [1] are the de facto standard.",
		"We propose a new architecture that is efficient.",
		"Results are presented here.",
	}, doc.Paragraphs)
}

func TestParse_PlainText(t *testing.T) {
	doc, err := Parse(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t,
		"Recurrent models [1] are the de facto standard.\n\n"+
			"We propose a new architecture that is efficient.\n\n"+
			"Results are presented here.",
		doc.PlainText())
}

func TestParse_ExcludesNonBodyText(t *testing.T) {
	doc, err := Parse(loadSample(t))
	require.NoError(t, err)

	text := doc.PlainText()
	for _, unwanted := range []string{"abstract", "Caption", "cell", "footnote", "funders", "Introduction"} {
		assert.NotContains(t, text, unwanted)
	}
}

func TestParse_Title(t *testing.T) {
	doc, err := Parse(loadSample(t))
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", doc.Title)
}

func TestParse_References(t *testing.T) {
	doc, err := Parse(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		`[1] "Long short-term memory" (1997) MIT Press`,
		`[2] "Deep Learning" (2016)`,
		"[3] Extraction Failed",
	}, doc.References)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"not xml", "this is not markup"},
		{"truncated", `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body><p>cut`},
		{"wrong root", `<html><body><p>hello</p></body></html>`},
		{"no body", `<TEI xmlns="http://www.tei-c.org/ns/1.0"><teiHeader/></TEI>`},
		{"empty body", `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body><div><head>Only a heading</head></div></body></text></TEI>`},
		{"only figure paragraphs", `<TEI><text><body><figure><p>caption</p></figure></body></text></TEI>`},
		{"empty input", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.markup))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Equal(t, types.ErrParse, types.CodeOf(err))
		})
	}
}

func TestParse_NestedInlineElements(t *testing.T) {
	markup := `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body>` +
		`<p>Alpha <hi rend="bold">beta <ref>gamma</ref></hi> delta.</p>` +
		`</body></text></TEI>`

	doc, err := Parse([]byte(markup))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha beta gamma delta."}, doc.Paragraphs)
	assert.Empty(t, doc.Title)
	assert.Empty(t, doc.References)
}

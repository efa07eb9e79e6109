// Package render lays out a translated paper as a PDF.
package render

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	"paper-translator/internal/types"
)

const (
	fontFamily = "body"
	coreFont   = "Helvetica"

	bodySize     = 10.5
	titleSize    = 18
	subtitleSize = 11
	lineHeight   = 6
)

// Content is what goes into the rendered PDF.
type Content struct {
	Title         string // translated title
	OriginalTitle string
	Paragraphs    []string // translated body paragraphs
	References    []string // left untranslated
}

// Renderer produces PDFs with a UTF-8 TTF font so that target-language
// glyphs (e.g. CJK) can be drawn.
type Renderer struct {
	fontPath string
}

// NewRenderer creates a Renderer. With an empty fontPath the built-in
// Helvetica is used, which only covers Latin text.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

// Render returns the PDF bytes for c.
func (r *Renderer) Render(c *Content) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(c.OriginalTitle, true)

	family := coreFont
	text := func(s string) string { return s }
	if r.fontPath != "" {
		family = fontFamily
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(fontFamily, style, r.fontPath)
		}
	} else {
		text = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrRender, "failed to load font", r.fontPath, err)
	}

	pdf.AddPage()

	if c.Title != "" {
		pdf.SetFont(family, "B", titleSize)
		pdf.MultiCell(0, 9, text(c.Title), "", "C", false)
		pdf.Ln(2)
	}
	if c.OriginalTitle != "" {
		pdf.SetFont(family, "I", subtitleSize)
		pdf.MultiCell(0, lineHeight, text(c.OriginalTitle), "", "C", false)
		pdf.Ln(6)
	}

	pdf.SetFont(family, "", bodySize)
	for _, para := range c.Paragraphs {
		pdf.MultiCell(0, lineHeight, text(para), "", "L", false)
		pdf.Ln(3)
	}

	if len(c.References) > 0 {
		pdf.AddPage()
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, "References", "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont(family, "", 9)
		for _, ref := range c.References {
			pdf.MultiCell(0, 5, text(ref), "", "L", false)
			pdf.Ln(1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, types.NewAppError(types.ErrRender, "failed to generate PDF output", err)
	}
	return buf.Bytes(), nil
}

// Package pdf inspects input PDFs before they are sent to the structure service.
// Inspection is informational: page count and whether a text layer exists.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"paper-translator/internal/types"
)

// DefaultProbePages is how many leading pages are checked for text.
const DefaultProbePages = 3

// minTextChars is the non-space character count that settles the probe early.
const minTextChars = 50

// PDFInfo PDF 文件信息
type PDFInfo struct {
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	PageCount    int    `json:"page_count"`
	FileSize     int64  `json:"file_size"`
	HasTextLayer bool   `json:"has_text_layer"`
}

// Inspector reads basic facts about a PDF.
type Inspector struct {
	probePages int
}

// NewInspector creates an Inspector that probes the first probePages pages
// for text. A non-positive value uses DefaultProbePages.
func NewInspector(probePages int) *Inspector {
	if probePages <= 0 {
		probePages = DefaultProbePages
	}
	return &Inspector{probePages: probePages}
}

// Inspect returns the page count, size and text-layer status of the PDF at path.
func (i *Inspector) Inspect(path string) (*PDFInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppErrorWithDetails(types.ErrFilesystem, "file does not exist", path, err)
		}
		return nil, types.NewAppErrorWithDetails(types.ErrFilesystem, "cannot access file", path, err)
	}
	if fileInfo.IsDir() {
		return nil, types.NewAppErrorWithDetails(types.ErrFilesystem, "path is a directory", path, nil)
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		// pdfcpu is strict about structure; fall back to the lenient reader.
		pageCount, err = i.countPages(path)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrExtraction, "cannot read PDF", path, err)
		}
	}

	hasText, err := i.HasTextLayer(path)
	if err != nil {
		hasText = false
	}

	return &PDFInfo{
		FilePath:     path,
		FileName:     filepath.Base(path),
		PageCount:    pageCount,
		FileSize:     fileInfo.Size(),
		HasTextLayer: hasText,
	}, nil
}

// HasTextLayer reports whether any of the first pages yields extractable text.
// Scanned documents without OCR usually do not.
func (i *Inspector) HasTextLayer(path string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("PDF reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	pages := i.probePages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	total := 0
	for n := 1; n <= pages; n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, c := range content {
			if !unicode.IsSpace(c) {
				total++
			}
		}
		if total > minTextChars {
			return true, nil
		}
	}
	return total > 0, nil
}

func (i *Inspector) countPages(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("PDF reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}

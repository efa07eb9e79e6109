// Package document discovers input PDFs and maps each one to its artifact paths.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"paper-translator/internal/storage"
	"paper-translator/internal/types"
)

const pdfExt = ".pdf"

// Artifact subdirectories under the output root.
const (
	MarkupDir     = "xml"
	TextDir       = "text"
	TranslatedDir = "translated"
	RenderDir     = "pdf"
)

// Document is one input PDF.
type Document struct {
	Name     string // file name, e.g. "paper.pdf"
	BaseName string // file name without the .pdf suffix
	Path     string
}

// Discover lists the PDF files directly inside dir, sorted by name.
// Subdirectories are not descended into.
func Discover(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrFilesystem, "cannot read input directory", dir, err)
	}

	var docs []Document
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, pdfExt) {
			continue
		}
		// Skip symlinks to directories and other non-regular entries.
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		docs = append(docs, Document{
			Name:     name,
			BaseName: strings.TrimSuffix(name, ext),
			Path:     filepath.Join(dir, name),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Layout places every artifact of a Document under one output root.
type Layout struct {
	Root string
}

// NewLayout creates a Layout rooted at dir.
func NewLayout(dir string) *Layout {
	return &Layout{Root: dir}
}

// Ensure creates the artifact directories.
func (l *Layout) Ensure() error {
	for _, sub := range []string{MarkupDir, TextDir, TranslatedDir, RenderDir} {
		dir := filepath.Join(l.Root, sub)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppErrorWithDetails(types.ErrFilesystem, "cannot create output directory", dir, err)
		}
	}
	return nil
}

// MarkupPath is where the structure service response is stored.
func (l *Layout) MarkupPath(d Document) string {
	return filepath.Join(l.Root, MarkupDir, d.BaseName+".xml")
}

// TextPath is where the extracted source-language text is stored.
func (l *Layout) TextPath(d Document) string {
	return filepath.Join(l.Root, TextDir, d.BaseName+".txt")
}

// OutputPath is where the final translated text is stored.
func (l *Layout) OutputPath(d Document) string {
	return filepath.Join(l.Root, TranslatedDir, d.BaseName+".txt")
}

// RenderPath is where the optional translated PDF is stored.
func (l *Layout) RenderPath(d Document) string {
	return filepath.Join(l.Root, RenderDir, fmt.Sprintf("%s_translated.pdf", d.BaseName))
}

// ReportPath is the YAML run report.
func (l *Layout) ReportPath() string {
	return filepath.Join(l.Root, "report.yaml")
}

// LedgerPath is the JSON failure ledger.
func (l *Layout) LedgerPath() string {
	return filepath.Join(l.Root, "failures.json")
}

// Done reports whether the final output of d exists. An existing output
// means d is never processed again.
func (l *Layout) Done(d Document) bool {
	return storage.Exists(l.OutputPath(d))
}

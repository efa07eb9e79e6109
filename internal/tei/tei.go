// Package tei extracts body text, title and references from GROBID TEI markup.
package tei

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"paper-translator/internal/types"
)

// Namespace is the TEI XML namespace GROBID emits.
const Namespace = "http://www.tei-c.org/ns/1.0"

// ParagraphSeparator joins body paragraphs into plain text.
const ParagraphSeparator = "\n\n"

// MissingReference is used for bibliography entries with no usable fields.
const MissingReference = "Extraction Failed"

// Elements whose paragraphs are not body text even when inside <body>.
var excludedContainers = map[string]bool{
	"figure":   true,
	"table":    true,
	"note":     true,
	"formula":  true,
	"listBibl": true,
}

// Document is the text content extracted from one TEI file.
type Document struct {
	Title      string
	Paragraphs []string
	References []string
}

// PlainText joins the body paragraphs with a blank line.
func (d *Document) PlainText() string {
	return strings.Join(d.Paragraphs, ParagraphSeparator)
}

type reference struct {
	title     string
	when      string
	publisher string
}

func (r reference) String() string {
	var parts []string
	if r.title != "" {
		parts = append(parts, `"`+r.title+`"`)
	}
	if r.when != "" {
		parts = append(parts, "("+r.when+")")
	}
	if r.publisher != "" {
		parts = append(parts, r.publisher)
	}
	if len(parts) == 0 {
		return MissingReference
	}
	return strings.Join(parts, " ")
}

// parser holds the streaming state of one Parse call.
type parser struct {
	stack []string

	sawBody   bool
	excluded  int // open excluded containers inside <body>
	paraDepth int
	para      strings.Builder

	titleDepth int
	title      strings.Builder
	titleDone  bool

	bibl       *reference
	biblField  string // "title" or "publisher" while inside one
	biblDepth  int
	fieldDepth int
	field      strings.Builder

	doc Document
}

// Parse streams markup and returns its body paragraphs in document order.
// Markup whose root is not TEI, that lacks text/body, or whose body holds no
// paragraphs is a parse error.
func Parse(markup []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(markup))
	p := &parser{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.NewAppError(types.ErrParse, "malformed TEI markup", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(p.stack) == 0 && t.Name.Local != "TEI" {
				return nil, types.NewAppErrorWithDetails(types.ErrParse, "unexpected root element", t.Name.Local, nil)
			}
			p.start(t)
		case xml.EndElement:
			p.end()
		case xml.CharData:
			p.text(t)
		}
	}

	if len(p.doc.Paragraphs) == 0 && !p.sawBody {
		return nil, types.NewAppErrorWithDetails(types.ErrParse, "invalid TEI structure", "missing text/body", nil)
	}
	if len(p.doc.Paragraphs) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrParse, "invalid TEI structure", "body has no paragraphs", nil)
	}

	doc := p.doc
	return &doc, nil
}

func (p *parser) start(t xml.StartElement) {
	name := t.Name.Local
	p.stack = append(p.stack, name)
	depth := len(p.stack)

	if p.inBody() {
		if depth == 3 {
			p.sawBody = true
		}
		if excludedContainers[name] {
			p.excluded++
		}
		if name == "p" && p.excluded == 0 {
			if p.paraDepth == 0 {
				p.para.Reset()
			}
			p.paraDepth++
		}
	}

	if name == "title" && !p.titleDone && p.titleDepth == 0 && p.inTitleStmt() {
		p.titleDepth = depth
		p.title.Reset()
	}

	if name == "biblStruct" && p.bibl == nil && p.has("listBibl") {
		p.bibl = &reference{}
		p.biblDepth = depth
		return
	}
	if p.bibl != nil && p.fieldDepth == 0 {
		switch {
		case name == "title" && p.bibl.title == "":
			p.biblField, p.fieldDepth = "title", depth
			p.field.Reset()
		case name == "publisher" && p.bibl.publisher == "":
			p.biblField, p.fieldDepth = "publisher", depth
			p.field.Reset()
		case name == "date" && p.bibl.when == "":
			p.bibl.when = attr(t, "when")
		}
	}
}

func (p *parser) end() {
	if len(p.stack) == 0 {
		return
	}
	depth := len(p.stack)
	name := p.stack[depth-1]

	if p.inBody() {
		if name == "p" && p.paraDepth > 0 && p.excluded == 0 {
			p.paraDepth--
			if p.paraDepth == 0 {
				if s := clean(p.para.String()); s != "" {
					p.doc.Paragraphs = append(p.doc.Paragraphs, s)
				}
			}
		}
		if excludedContainers[name] {
			p.excluded--
		}
	}

	if depth == p.titleDepth {
		p.doc.Title = clean(p.title.String())
		p.titleDepth = 0
		p.titleDone = p.doc.Title != ""
	}

	if p.bibl != nil {
		if depth == p.fieldDepth {
			value := clean(p.field.String())
			if p.biblField == "title" {
				p.bibl.title = value
			} else {
				p.bibl.publisher = value
			}
			p.fieldDepth = 0
		}
		if depth == p.biblDepth {
			n := len(p.doc.References) + 1
			p.doc.References = append(p.doc.References, fmt.Sprintf("[%d] %s", n, p.bibl))
			p.bibl = nil
		}
	}

	p.stack = p.stack[:depth-1]
}

func (p *parser) text(data xml.CharData) {
	if p.paraDepth > 0 && p.excluded == 0 && p.inBody() {
		p.para.Write(data)
	}
	if p.titleDepth > 0 {
		p.title.Write(data)
	}
	if p.fieldDepth > 0 {
		p.field.Write(data)
	}
}

// inBody reports whether the current element is TEI/text/body or inside it.
func (p *parser) inBody() bool {
	return len(p.stack) >= 3 && p.stack[0] == "TEI" && p.stack[1] == "text" && p.stack[2] == "body"
}

func (p *parser) inTitleStmt() bool {
	return len(p.stack) >= 4 && p.stack[1] == "teiHeader" && p.has("titleStmt")
}

func (p *parser) has(name string) bool {
	for _, s := range p.stack {
		if s == name {
			return true
		}
	}
	return false
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// clean applies NFKC normalisation (folding ligatures such as "ﬁ") and
// collapses runs of whitespace to single spaces.
func clean(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

package content

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const elsevierCommonNS = "http://www.elsevier.com/xml/common"

// skippedElements hold no running text: figures, tables, formulas and
// bibliographies in both Elsevier and JATS markup.
var skippedElements = map[string]bool{
	"fig":            true,
	"figure":         true,
	"table-wrap":     true,
	"table":          true,
	"ref-list":       true,
	"bibliography":   true,
	"disp-formula":   true,
	"inline-formula": true,
	"formula":        true,
	"tex-math":       true,
	"math":           true,
}

// ParagraphExtractor pulls plain-text paragraphs out of article XML.
//
// Elsevier documents contribute every ce:para. NLM/JATS documents contribute
// every p inside abstract or body. When a document has Elsevier paragraphs
// those win. Input that is not markup is returned as a single paragraph.
type ParagraphExtractor struct{}

// NewParagraphExtractor creates a ParagraphExtractor.
func NewParagraphExtractor() ParagraphExtractor {
	return ParagraphExtractor{}
}

type paragraphKind int

const (
	kindNone paragraphKind = iota
	kindElsevier
	kindJATS
)

type frame struct {
	skip    bool
	section bool
	para    bool
}

// ExtractParagraphs implements core.ParagraphExtractor.
func (ParagraphExtractor) ExtractParagraphs(markup string) ([]string, error) {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return []string{}, nil
	}
	if !strings.HasPrefix(trimmed, "<") {
		return []string{normalizeSpace(trimmed)}, nil
	}

	dec := xml.NewDecoder(strings.NewReader(trimmed))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var (
		elsevier []string
		jats     []string
		frames   []frame
		skipping int
		sections int
		current  strings.Builder
		kind     = kindNone
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse markup: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var f frame
			if skippedElements[t.Name.Local] {
				f.skip = true
				skipping++
			}
			if t.Name.Local == "abstract" || t.Name.Local == "body" {
				f.section = true
				sections++
			}
			if kind == kindNone && skipping == 0 {
				switch {
				case isElsevierPara(t.Name):
					kind, f.para = kindElsevier, true
				case t.Name.Local == "p" && sections > 0:
					kind, f.para = kindJATS, true
				}
			}
			frames = append(frames, f)

		case xml.EndElement:
			if len(frames) == 0 {
				continue
			}
			f := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			if f.skip {
				skipping--
			}
			if f.section {
				sections--
			}
			if f.para {
				if text := normalizeSpace(current.String()); text != "" {
					if kind == kindElsevier {
						elsevier = append(elsevier, text)
					} else {
						jats = append(jats, text)
					}
				}
				current.Reset()
				kind = kindNone
			}

		case xml.CharData:
			if kind != kindNone && skipping == 0 {
				current.Write(t)
			}
		}
	}

	if len(elsevier) > 0 {
		return elsevier, nil
	}
	if jats == nil {
		return []string{}, nil
	}
	return jats, nil
}

func isElsevierPara(name xml.Name) bool {
	if name.Local != "para" {
		return false
	}
	return name.Space == "ce" || strings.HasPrefix(name.Space, elsevierCommonNS)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

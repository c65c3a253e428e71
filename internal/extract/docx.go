package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

// DOCX extracts paragraph text from a WordprocessingML package. Paragraphs that are
// empty or whitespace-only are dropped; the rest are joined by newlines in document order.
type DOCX struct{}

func (DOCX) Extract(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("docx: open: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docx: open body: %w", err)
		}
		defer rc.Close()

		paras, err := docxParagraphs(rc)
		if err != nil {
			// Keep whatever was read before the document went bad.
			return strings.Join(paras, "\n"), err
		}
		return strings.Join(paras, "\n"), nil
	}
	return "", errors.New("docx: word/document.xml not found")
}

// docxParagraphs walks the body token by token. Only run content (w:t, w:tab, w:br
// and w:cr inside a w:r) is collected, so tab stops and other paragraph properties
// never leak into the text. Text inside mc:Fallback is skipped since it repeats the
// mc:Choice content.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		out      []string
		stack    []*strings.Builder
		runs     []int
		inText   bool
		fallback int
	)
	current := func() *strings.Builder {
		if len(stack) == 0 || runs[len(runs)-1] == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("docx: parse body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Fallback" {
				fallback++
			}
			if fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
				runs = append(runs, 0)
			case "r":
				if len(runs) > 0 {
					runs[len(runs)-1]++
				}
			case "t":
				inText = current() != nil
			case "tab":
				if b := current(); b != nil {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Fallback" {
				fallback--
				continue
			}
			if fallback > 0 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				if len(runs) > 0 && runs[len(runs)-1] > 0 {
					runs[len(runs)-1]--
				}
			case "p":
				if len(stack) > 0 {
					b := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					runs = runs[:len(runs)-1]
					if text := b.String(); strings.TrimSpace(text) != "" {
						out = append(out, text)
					}
				}
			}
		case xml.CharData:
			if inText && fallback == 0 {
				if b := current(); b != nil {
					b.Write(t)
				}
			}
		}
	}
}

package faq

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/guidedcare/pathway/internal/domain"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrCorpusMissing means the FAQ content directory is absent. An empty
// directory is legal (a zero-document corpus); a missing one is a
// deployment problem.
var ErrCorpusMissing = errors.New("faq corpus directory missing")

// LoadCorpus reads every .md file in dir, in name order, into FAQ
// documents: slug from the file name, title from the first level-1
// heading, rendered HTML for display and extracted plain text for
// retrieval.
func LoadCorpus(dir string) ([]domain.FAQDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrCorpusMissing)
		}
		return nil, fmt.Errorf("read corpus dir %s: %w", dir, err)
	}

	md := goldmark.New()

	var docs []domain.FAQDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		source, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read corpus file %s: %w", entry.Name(), err)
		}

		slug := strings.TrimSuffix(entry.Name(), ".md")
		doc := md.Parser().Parse(text.NewReader(source))

		title := firstHeading(doc, source)
		if title == "" {
			title = slug
		}

		var html bytes.Buffer
		if err := md.Convert(source, &html); err != nil {
			return nil, fmt.Errorf("render %s: %w", entry.Name(), err)
		}

		docs = append(docs, domain.FAQDocument{
			Slug:    slug,
			Title:   title,
			Content: plainText(doc, source),
			HTML:    html.String(),
		})
	}

	return docs, nil
}

// firstHeading returns the text of the document's first level-1
// heading.
func firstHeading(doc ast.Node, source []byte) string {
	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 1 {
			title = headingText(heading, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
		}
	}
	return strings.TrimSpace(buf.String())
}

// plainText flattens the document body to space-separated prose for
// the retrieval index and snippets.
func plainText(doc ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

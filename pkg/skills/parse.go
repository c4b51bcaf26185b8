package skills

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// loadWithMarker introduces the prose dependency line, e.g.
// "*Load with: base.md + typescript.md*".
const loadWithMarker = "Load with:"

var markdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ParseFile reads and parses the document at path.
func ParseFile(path string, kind Kind) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	doc := Parse(filepath.Base(path), content, kind)
	doc.Path = path
	return doc, nil
}

// Parse builds a Document from raw content. It never fails: malformed
// frontmatter is ignored and the document keeps its name and body.
func Parse(fileName string, content []byte, kind Kind) *Document {
	doc := &Document{
		Name: strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		File: fileName,
		Kind: kind,
		Body: extractBodyContent(string(content)),
	}

	pctx := parser.NewContext()
	root := markdown.Parser().Parse(text.NewReader(content), parser.WithContext(pctx))

	var md Metadata
	if raw, err := meta.TryGet(pctx); err == nil && len(raw) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &md,
		})
		if err == nil {
			_ = decoder.Decode(raw)
		}
	}
	doc.Description = strings.TrimSpace(md.Description)

	var prose []string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 1 && doc.Title == "" {
				doc.Title = nodeText(node, content)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			line := nodeText(node, content)
			if prose == nil && strings.HasPrefix(line, loadWithMarker) {
				prose = dependencyNames(strings.TrimPrefix(line, loadWithMarker))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	if len(md.Requires) > 0 {
		var declared []string
		for _, r := range md.Requires {
			declared = append(declared, dependencyNames(r)...)
		}
		doc.Dependencies = normalizeDependencies(doc.Name, declared)
	} else {
		doc.Dependencies = normalizeDependencies(doc.Name, prose)
	}

	return doc
}

// nodeText concatenates the inline text below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.CodeSpan:
			for c := t.FirstChild(); c != nil; c = c.NextSibling() {
				if seg, ok := c.(*ast.Text); ok {
					b.Write(seg.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// dependencyNames extracts skill names from free text such as
// "base.md + typescript.md". Bare names without an extension are accepted
// only when the text holds a single token.
func dependencyNames(s string) []string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.')
	})

	var names []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".")
		if strings.HasSuffix(tok, ".md") {
			names = append(names, strings.TrimSuffix(tok, ".md"))
		}
	}
	if len(names) == 0 && len(tokens) == 1 && tokens[0] != "" {
		names = append(names, tokens[0])
	}
	return names
}

func normalizeDependencies(self string, names []string) []string {
	seen := map[string]bool{self: true}
	var out []string
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
		}
	}
	return content
}

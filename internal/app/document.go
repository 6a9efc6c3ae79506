package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/richfind/internal/dom/memdom"
)

// ParseDocument builds a document from plain text. Blank lines separate
// paragraphs, a leading "# " makes a heading, lines inside a paragraph are
// joined by <br> and *text* becomes a <b> element.
func ParseDocument(r io.Reader) (*memdom.Document, error) {
	var blocks []*memdom.Node
	var para *memdom.Node

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			para = nil
			continue
		}
		if h, ok := strings.CutPrefix(line, "# "); ok {
			blocks = append(blocks, memdom.Element("h1", inline(h)...))
			para = nil
			continue
		}
		if para == nil {
			para = memdom.Element("p")
			blocks = append(blocks, para)
		} else {
			para.Append(memdom.Element("br"))
		}
		para.Append(inline(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return memdom.NewDocument(blocks...), nil
}

// inline splits a line on '*' pairs. An unbalanced line stays plain.
func inline(s string) []*memdom.Node {
	parts := strings.Split(s, "*")
	if len(parts)%2 == 0 {
		return []*memdom.Node{memdom.Text(s)}
	}
	var out []*memdom.Node
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i%2 == 1 {
			out = append(out, memdom.Element("b", memdom.Text(p)))
		} else {
			out = append(out, memdom.Text(p))
		}
	}
	return out
}

// WriteDocument writes doc back in the format ParseDocument reads.
func WriteDocument(w io.Writer, doc *memdom.Document) error {
	var b strings.Builder
	for i, block := range doc.Root().Children() {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case block.Kind() == memdom.KindText:
			b.WriteString(block.Data())
		case block.Tag() == "h1":
			b.WriteString("# ")
			writeInline(&b, block)
		default:
			writeInline(&b, block)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeInline(b *strings.Builder, n *memdom.Node) {
	for _, c := range n.Children() {
		switch {
		case c.Kind() == memdom.KindText:
			b.WriteString(c.Data())
		case c.Tag() == "br":
			b.WriteString("\n")
		case c.Tag() == "b":
			b.WriteString("*")
			writeInline(b, c)
			b.WriteString("*")
		default:
			writeInline(b, c)
		}
	}
}

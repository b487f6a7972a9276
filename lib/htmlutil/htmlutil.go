package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// VisibleText flattens a document to the text a person would see on the
// rendered page. Script, style and template subtrees carry markup and
// inline javascript that would confuse keyword matching, so they are
// dropped before flattening.
func VisibleText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript, template").Remove()

	var buffer bytes.Buffer
	for _, node := range clone.Nodes {
		getTextRecursive(node, &buffer)
		buffer.WriteString("\n")
	}
	return CollapseWhitespace(buffer.String())
}

func CollapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r' || r == '\t'
	})
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	var out []string
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "\n")
}

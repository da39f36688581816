package summary

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ExtractText reads the source text for a summary. HTML documents are
// reduced to their readable text; everything else is read as plain text.
//
// The content type may be empty; the file name is then used to guess it.
func ExtractText(r io.Reader, contentType, name string) (string, error) {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)

	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		doc, err := html.Parse(r)
		if err != nil {
			return "", err
		}
		return htmlText(doc), nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// htmlText collects the visible text of an HTML document.
// Block elements end a line, runs of whitespace collapse to one space.
func htmlText(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)

	var lines []string
	for _, l := range strings.Split(sb.String(), "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(strings.ReplaceAll(n.Data, "\n", " "))
	}
	if n.Type == html.ElementNode {
		if skipElement(n.Data) {
			return
		}
		if n.Data == "br" {
			sb.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
	if n.Type == html.ElementNode && isBlock(n.Data) {
		sb.WriteString("\n")
	}
}

func skipElement(tag string) bool {
	switch tag {
	case "head", "script", "style", "noscript", "template", "svg", "iframe":
		return true
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "blockquote", "pre", "section", "article":
		return true
	}
	return false
}

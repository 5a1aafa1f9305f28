// sandbox/dom.go
package sandbox

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Element is the whole document loader surface the sandboxed extractor relies on:
// parse, first match by tag/attribute, child and descendant listing, text and
// attributes. There is no selector engine.
type Element struct {
	node *html.Node
}

// Parse builds the element tree for a document.
func Parse(r io.Reader) (*Element, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Element{node: root}, nil
}

// Tag is the lower-case element name, "" for the document root.
func (e *Element) Tag() string {
	if e == nil || e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// Attr returns the attribute value, or "" when absent.
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Text concatenates every descendant text node, untrimmed.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// Children lists direct element children whose tag is one of tags (any tag when empty).
func (e *Element) Children(tags ...string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && tagIn(c.Data, tags) {
			out = append(out, &Element{node: c})
		}
	}
	return out
}

// All lists descendant elements whose tag is one of tags, in document order.
func (e *Element) All(tags ...string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && tagIn(c.Data, tags) {
				out = append(out, &Element{node: c})
			}
			walk(c)
		}
	}
	walk(e.node)
	return out
}

// SelectFirst returns the first descendant with the given tag (any when "") whose
// attribute key equals value, or nil.
func (e *Element) SelectFirst(tag, key, value string) *Element {
	var tags []string
	if tag != "" {
		tags = []string{tag}
	}
	for _, el := range e.All(tags...) {
		if el.hasAttr(key) && el.Attr(key) == value {
			return el
		}
	}
	return nil
}

func (e *Element) hasAttr(name string) bool {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func tagIn(tag string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

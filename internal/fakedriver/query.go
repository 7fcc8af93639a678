package fakedriver

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/tebeka/selenium"
	"golang.org/x/net/html"
)

// query finds the descendants of root matching a WebDriver locator.
func query(root *html.Node, by, value string) ([]*html.Node, error) {
	switch by {
	case selenium.ByCSSSelector:
		return css(root, value)
	case selenium.ByTagName:
		return css(root, value)
	case selenium.ByName:
		return css(root, fmt.Sprintf("[name=%q]", value))
	case selenium.ByID:
		return css(root, fmt.Sprintf("[id=%q]", value))
	case selenium.ByClassName:
		if value == "" || strings.ContainsAny(value, " \t\n") {
			return nil, fmt.Errorf("invalid selector: compound class names not permitted: %q", value)
		}
		return css(root, "."+value)
	case selenium.ByXPATH:
		return xpath(root, value)
	case selenium.ByLinkText, selenium.ByPartialLinkText:
		links, err := css(root, "a")
		if err != nil {
			return nil, err
		}
		var out []*html.Node
		for _, n := range links {
			text := visibleText(n)
			if text == value || (by == selenium.ByPartialLinkText && strings.Contains(text, value)) {
				out = append(out, n)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid argument: unknown locator strategy %q", by)
	}
}

func css(root *html.Node, selector string) ([]*html.Node, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector: %q: %v", selector, err)
	}
	return goquery.NewDocumentFromNode(root).FindMatcher(m).Nodes, nil
}

func xpath(root *html.Node, expr string) ([]*html.Node, error) {
	nodes, err := htmlquery.QueryAll(root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid selector: %q: %v", expr, err)
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func toggleAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name})
}

// hidden reports whether n itself is hidden. Styles other than inline
// display:none are not evaluated.
func hidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if _, ok := attr(n, "hidden"); ok {
		return true
	}
	if n.Data == "input" {
		if t, _ := attr(n, "type"); strings.EqualFold(t, "hidden") {
			return true
		}
	}
	if style, ok := attr(n, "style"); ok {
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	switch n.Data {
	case "script", "style", "head", "title", "template":
		return true
	}
	return false
}

// displayed reports whether n and all of its ancestors are visible.
func displayed(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if hidden(p) {
			return false
		}
	}
	return true
}

// visibleText returns the rendered text of n with whitespace collapsed.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if hidden(c) {
				return
			}
			for k := c.FirstChild; k != nil; k = k.NextSibling {
				walk(k)
			}
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// enclosing returns the nearest ancestor-or-self element with the given tag.
func enclosing(n *html.Node, tag string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

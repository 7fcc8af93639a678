package fakedriver

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tebeka/selenium"
	"golang.org/x/net/html"
)

// element is a handle to a node of one loaded document. It goes stale as
// soon as the driver loads another document.
type element struct {
	selenium.WebElement

	d    *Driver
	node *html.Node
	gen  int
}

func (e *element) check() error {
	if err := e.d.alive(); err != nil {
		return err
	}
	if e.gen != e.d.gen {
		return errStale
	}
	return nil
}

// Click activates the element: toggles, links and submit buttons do what a
// browser would do without scripts.
func (e *element) Click() error {
	if err := e.check(); err != nil {
		return err
	}
	if !displayed(e.node) {
		return errNotInteractable
	}
	return e.d.activate(hit(e.node))
}

// hit returns the node a click at the centre of n lands on: the innermost
// element reached by following only children.
func hit(n *html.Node) *html.Node {
	for {
		var only *html.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
				return n
			}
			if c.Type != html.ElementNode {
				continue
			}
			if only != nil {
				return n
			}
			only = c
		}
		if only == nil || hidden(only) {
			return n
		}
		n = only
	}
}

func (d *Driver) activate(n *html.Node) error {
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if target, ok := attr(p, "data-toggle"); ok {
			return d.toggle(target)
		}
		switch p.Data {
		case "a":
			href, ok := attr(p, "href")
			if !ok || href == "" || strings.HasPrefix(href, "#") {
				return nil
			}
			if t, _ := attr(p, "target"); t == "_blank" {
				return nil
			}
			u, err := d.resolve(href)
			if err != nil {
				return err
			}
			return d.fetch(http.MethodGet, u, nil)
		case "button":
			if t, _ := attr(p, "type"); strings.EqualFold(t, "button") || strings.EqualFold(t, "reset") {
				return nil
			}
			if form := enclosing(p, "form"); form != nil {
				return d.submit(form)
			}
			return nil
		case "input":
			if t, _ := attr(p, "type"); strings.EqualFold(t, "submit") {
				if form := enclosing(p, "form"); form != nil {
					return d.submit(form)
				}
			}
			return nil
		}
	}
	return nil
}

func (d *Driver) toggle(selector string) error {
	nodes, err := css(d.doc.Nodes[0], selector)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		toggleAttr(n, "hidden")
	}
	return nil
}

func (d *Driver) submit(form *html.Node) error {
	values := url.Values{}
	goquery.NewDocumentFromNode(form).Find("input[name], textarea[name], select[name]").Each(func(_ int, s *goquery.Selection) {
		n := s.Nodes[0]
		switch t, _ := attr(n, "type"); strings.ToLower(t) {
		case "submit", "button", "reset", "image":
			return
		}
		name, _ := attr(n, "name")
		values.Add(name, d.value(n))
	})

	action, _ := attr(form, "action")
	u, err := d.resolve(action)
	if err != nil {
		return err
	}
	method := http.MethodGet
	if m, _ := attr(form, "method"); strings.EqualFold(m, http.MethodPost) {
		method = http.MethodPost
	}
	return d.fetch(method, u, values)
}

func (d *Driver) value(n *html.Node) string {
	if v, ok := d.values[n]; ok {
		return v
	}
	if n.Data == "textarea" {
		return visibleText(n)
	}
	v, _ := attr(n, "value")
	return v
}

// SendKeys appends keys to the value of a text control. Enter or Return
// submits the enclosing form.
func (e *element) SendKeys(keys string) error {
	if err := e.check(); err != nil {
		return err
	}
	if !displayed(e.node) {
		return errNotInteractable
	}
	submit := strings.ContainsAny(keys, selenium.EnterKey+selenium.ReturnKey)
	keys = strings.NewReplacer(selenium.EnterKey, "", selenium.ReturnKey, "").Replace(keys)
	if e.node.Data == "input" || e.node.Data == "textarea" {
		e.d.values[e.node] = e.d.value(e.node) + keys
	}
	if submit {
		if form := enclosing(e.node, "form"); form != nil {
			return e.d.submit(form)
		}
	}
	return nil
}

// Clear empties a text control.
func (e *element) Clear() error {
	if err := e.check(); err != nil {
		return err
	}
	if e.node.Data == "input" || e.node.Data == "textarea" {
		e.d.values[e.node] = ""
	}
	return nil
}

// Submit submits the form the element belongs to.
func (e *element) Submit() error {
	if err := e.check(); err != nil {
		return err
	}
	form := enclosing(e.node, "form")
	if form == nil {
		return fmt.Errorf("no such element: element is not in a form")
	}
	return e.d.submit(form)
}

func (e *element) FindElement(by, value string) (selenium.WebElement, error) {
	elems, err := e.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%v: %s=%q", errNoSuchElement, by, value)
	}
	return elems[0], nil
}

func (e *element) FindElements(by, value string) ([]selenium.WebElement, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.d.findIn(e.node, by, value)
}

func (e *element) TagName() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	return e.node.Data, nil
}

// Text returns the rendered text, empty for hidden elements.
func (e *element) Text() (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	if !displayed(e.node) {
		return "", nil
	}
	return visibleText(e.node), nil
}

func (e *element) IsDisplayed() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	return displayed(e.node), nil
}

func (e *element) IsEnabled() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	_, disabled := attr(e.node, "disabled")
	return !disabled, nil
}

func (e *element) IsSelected() (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	_, checked := attr(e.node, "checked")
	_, selected := attr(e.node, "selected")
	return checked || selected, nil
}

// GetAttribute returns the attribute value; "value" reflects typed text.
func (e *element) GetAttribute(name string) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	if name == "value" {
		return e.d.value(e.node), nil
	}
	v, ok := attr(e.node, name)
	if !ok {
		return "", errNilAttribute
	}
	return v, nil
}

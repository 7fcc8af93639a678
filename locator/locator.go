// Package locator declares how page elements are found and resolves those
// declarations against a live document.
//
// A Locator is a plain value: a strategy, a selector and the number of
// elements the caller expects. Nothing is cached. Every call to Resolve or
// ResolveAll queries the current document again, so a handle obtained before
// a navigation is never handed out after it.
package locator

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// Strategy is the method used to find elements. The values are the WebDriver
// wire names.
type Strategy string

// Supported strategies.
const (
	ByName      Strategy = selenium.ByName
	ByCSS       Strategy = selenium.ByCSSSelector
	ByXPath     Strategy = selenium.ByXPATH
	ByClassName Strategy = selenium.ByClassName
	ByID        Strategy = selenium.ByID
	ByLinkText  Strategy = selenium.ByLinkText
)

// Finder is anything elements can be looked up in: a whole page
// (selenium.WebDriver) or the subtree of an element (selenium.WebElement).
type Finder interface {
	FindElements(by, value string) ([]selenium.WebElement, error)
}

// Locator describes how to find one element, or an ordered list of elements,
// in the current document.
type Locator struct {
	// Name is a human readable label used in error messages.
	Name string
	// By is the lookup strategy.
	By Strategy
	// Value is the selector, path expression or attribute value.
	Value string
	// List is true when any number of matches, including none, is valid.
	List bool
}

// New returns a locator expecting exactly one match.
func New(name string, by Strategy, value string) Locator {
	return Locator{Name: name, By: by, Value: value}
}

// CSS returns a single-element locator using a CSS selector.
func CSS(name, selector string) Locator { return New(name, ByCSS, selector) }

// XPath returns a single-element locator using a path expression.
func XPath(name, expr string) Locator { return New(name, ByXPath, expr) }

// Name returns a single-element locator matching the name attribute.
func Name(name, attr string) Locator { return New(name, ByName, attr) }

// ClassName returns a single-element locator matching one class name.
func ClassName(name, class string) Locator { return New(name, ByClassName, class) }

// ID returns a single-element locator matching the id attribute.
func ID(name, id string) Locator { return New(name, ByID, id) }

// All returns a copy of l that resolves to an ordered list.
func (l Locator) All() Locator {
	l.List = true
	return l
}

func (l Locator) String() string {
	kind := "one"
	if l.List {
		kind = "list"
	}
	return fmt.Sprintf("%s (%s %q, %s)", l.Name, l.By, l.Value, kind)
}

// Resolve finds the single element l describes. It fails with
// ErrElementNotFound when nothing matches and with ErrAmbiguousElement when
// more than one element does.
func (l Locator) Resolve(f Finder) (selenium.WebElement, error) {
	if l.List {
		return nil, &ResolveError{Locator: l, Err: ErrWrongCardinality}
	}
	elems, err := l.find(f)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 0:
		return nil, &ResolveError{Locator: l, Err: ErrElementNotFound}
	case 1:
		return elems[0], nil
	default:
		return nil, &ResolveError{Locator: l, Count: len(elems), Err: ErrAmbiguousElement}
	}
}

// ResolveAll finds every element l describes, in document order. An empty
// result is not an error.
func (l Locator) ResolveAll(f Finder) ([]selenium.WebElement, error) {
	return l.find(f)
}

func (l Locator) find(f Finder) ([]selenium.WebElement, error) {
	if f == nil {
		return nil, &ResolveError{Locator: l, Err: ErrNoSession}
	}
	elems, err := f.FindElements(string(l.By), l.Value)
	if err != nil {
		// Some drivers answer "no such element" to an empty FindElements.
		if isNoSuchElement(err) {
			return nil, nil
		}
		return nil, l.Wrap("find", err)
	}
	return elems, nil
}

// Wrap annotates an error returned by the driver while operating on an
// element resolved from l. Stale handles are reported as ErrStaleElement.
func (l Locator) Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*ResolveError); ok {
		return err
	}
	if isStale(err) {
		return &ResolveError{Locator: l, Op: op, Err: ErrStaleElement, Cause: err}
	}
	return &ResolveError{Locator: l, Op: op, Err: err}
}

func isNoSuchElement(err error) bool {
	return strings.Contains(err.Error(), "no such element")
}

func isStale(err error) bool {
	return strings.Contains(err.Error(), "stale element reference")
}

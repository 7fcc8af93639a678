// Package pages holds the page objects of the OrangeHRM web UI.
//
// Every page object embeds a *Binding, the capability to look elements up in
// one browser session, and declares its elements as locator.Locator values.
// Binding is lazy: each method resolves the locators it needs against the
// document that is loaded at the time of the call, so element handles never
// outlive a single method call and navigation cannot leave stale handles
// behind.
package pages

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hrmqa/orangehrm-selenium/locator"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
)

// LabelPolicy decides what clicking a menu item by label does when no item
// carries the label.
type LabelPolicy int

const (
	// Lenient does nothing when the label is missing.
	Lenient LabelPolicy = iota
	// Strict reports a *LabelNotFoundError when the label is missing.
	Strict
)

func (p LabelPolicy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("LabelPolicy(%d)", int(p))
	}
}

// ErrLabelNotFound is matched by every *LabelNotFoundError.
var ErrLabelNotFound = errors.New("label not found")

// LabelNotFoundError is returned under the Strict policy when a menu has no
// item with the requested label.
type LabelNotFoundError struct {
	// Menu names the menu that was searched.
	Menu string
	// Label is the label that was asked for.
	Label string
	// Available lists the labels the menu did show, in order.
	Available []string
}

func (e *LabelNotFoundError) Error() string {
	return fmt.Sprintf("%s: %v: %q (available: %s)", e.Menu, ErrLabelNotFound, e.Label, strings.Join(e.Available, ", "))
}

func (e *LabelNotFoundError) Unwrap() error { return ErrLabelNotFound }

// Page is implemented by every page object.
type Page interface {
	// Init attaches the page object to a session.
	Init(b *Binding)
}

// Binding is the bound session capability shared by page objects.
type Binding struct {
	finder locator.Finder
	policy LabelPolicy
	log    logrus.FieldLogger
}

// Option configures a Binding.
type Option func(*Binding)

// WithLabelPolicy sets the policy used by the click-by-label methods.
func WithLabelPolicy(p LabelPolicy) Option {
	return func(b *Binding) {
		b.policy = p
	}
}

// WithLogger sets the logger page objects write their debug lines to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Binding) {
		b.log = l
	}
}

// Bind returns a Binding that looks elements up in f, usually the
// selenium.WebDriver of the running session. A nil f yields a Binding whose
// every lookup fails with locator.ErrNoSession.
func Bind(f locator.Finder, opts ...Option) *Binding {
	discard := logrus.New()
	discard.Out = io.Discard
	b := &Binding{finder: f, log: discard}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the label policy in effect.
func (b *Binding) Policy() LabelPolicy { return b.policy }

func (b *Binding) resolve(l locator.Locator) (selenium.WebElement, error) {
	b.log.WithField("locator", l.Name).Debug("resolving element")
	return l.Resolve(b.finder)
}

func (b *Binding) resolveAll(l locator.Locator) ([]selenium.WebElement, error) {
	b.log.WithField("locator", l.Name).Debug("resolving elements")
	return l.ResolveAll(b.finder)
}

func (b *Binding) click(l locator.Locator) error {
	e, err := b.resolve(l)
	if err != nil {
		return err
	}
	return l.Wrap("click", e.Click())
}

// typeText replaces the content of a text control.
func (b *Binding) typeText(l locator.Locator, text string) error {
	e, err := b.resolve(l)
	if err != nil {
		return err
	}
	if err := e.Clear(); err != nil {
		return l.Wrap("clear", err)
	}
	return l.Wrap("send keys", e.SendKeys(text))
}

func (b *Binding) text(l locator.Locator) (string, error) {
	e, err := b.resolve(l)
	if err != nil {
		return "", err
	}
	s, err := e.Text()
	return s, l.Wrap("text", err)
}

func (b *Binding) attribute(l locator.Locator, name string) (string, error) {
	e, err := b.resolve(l)
	if err != nil {
		return "", err
	}
	v, err := e.GetAttribute(name)
	return v, l.Wrap("attribute "+name, err)
}

func (b *Binding) displayed(l locator.Locator) (bool, error) {
	e, err := b.resolve(l)
	if err != nil {
		return false, err
	}
	ok, err := e.IsDisplayed()
	return ok, l.Wrap("is displayed", err)
}

// anyDisplayed reports whether at least one element of a list locator is
// displayed. No match at all is false, not an error.
func (b *Binding) anyDisplayed(l locator.Locator) (bool, error) {
	elems, err := b.resolveAll(l)
	if err != nil {
		return false, err
	}
	for _, e := range elems {
		ok, err := e.IsDisplayed()
		if err != nil {
			return false, l.Wrap("is displayed", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (b *Binding) count(l locator.Locator) (int, error) {
	elems, err := b.resolveAll(l)
	return len(elems), err
}

// texts returns the text of every element of a list locator in document
// order.
func (b *Binding) texts(l locator.Locator) ([]string, error) {
	elems, err := b.resolveAll(l)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		s, err := e.Text()
		if err != nil {
			return nil, l.Wrap("text", err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (b *Binding) attributes(l locator.Locator, name string) ([]string, error) {
	elems, err := b.resolveAll(l)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		v, err := e.GetAttribute(name)
		if err != nil {
			return nil, l.Wrap("attribute "+name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// nestedTexts resolves child inside every element of parents and returns the
// texts in the order of parents.
func (b *Binding) nestedTexts(parents, child locator.Locator) ([]string, error) {
	elems, err := b.resolveAll(parents)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(elems))
	for _, p := range elems {
		c, err := child.Resolve(p)
		if err != nil {
			return nil, err
		}
		s, err := c.Text()
		if err != nil {
			return nil, child.Wrap("text", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// clickByLabel clicks the first element of items whose trimmed text equals
// the trimmed label, ignoring case. A missing label is handled according to
// the policy.
func (b *Binding) clickByLabel(items locator.Locator, label string) error {
	elems, err := b.resolveAll(items)
	if err != nil {
		return err
	}
	want := strings.TrimSpace(label)
	seen := make([]string, 0, len(elems))
	for _, e := range elems {
		s, err := e.Text()
		if err != nil {
			return items.Wrap("text", err)
		}
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, want) {
			return items.Wrap("click", e.Click())
		}
		seen = append(seen, s)
	}

	log := b.log.WithFields(logrus.Fields{"menu": items.Name, "label": label})
	if b.policy == Strict {
		log.Debug("no menu item with label")
		return &LabelNotFoundError{Menu: items.Name, Label: label, Available: seen}
	}
	log.Debug("no menu item with label, ignoring click")
	return nil
}

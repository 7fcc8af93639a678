// Package fakedriver is a small in-process stand-in for a WebDriver session.
//
// It fetches pages over HTTP, parses them into a DOM and answers element
// lookups with CSS selectors (via goquery/cascadia) and XPath (via htmlquery).
// Clicking follows links, submits forms and toggles elements named by a
// data-toggle attribute, which is enough to drive server-rendered pages
// without a browser. Scripts are never run.
package fakedriver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
	"golang.org/x/net/html"
)

// Driver errors, worded like the messages real drivers return so callers that
// classify errors by text treat them the same way.
var (
	errNoSuchElement   = errors.New("no such element: unable to locate element")
	errStale           = errors.New("stale element reference: element is not attached to the page document")
	errInvalidSession  = errors.New("invalid session id")
	errNotInteractable = errors.New("element not interactable")
	errNilAttribute    = errors.New("nil return value")
)

// Driver implements selenium.WebDriver. Methods it does not implement panic
// through the embedded nil interface.
type Driver struct {
	selenium.WebDriver

	client *http.Client
	caps   selenium.Capabilities

	doc    *goquery.Document
	url    *url.URL
	gen    int
	values map[*html.Node]string
	quit   bool

	// Maximized is set by MaximizeWindow.
	Maximized bool
	// CookieClears counts DeleteAllCookies calls.
	CookieClears int
	// ImplicitWait is the last value passed to SetImplicitWaitTimeout.
	ImplicitWait time.Duration
	// QuitCalls counts Quit calls.
	QuitCalls int
	// Visited lists every URL loaded, in order, after redirects.
	Visited []string
	// Console is returned by Log for the browser log type.
	Console []log.Message
}

// Option configures a Driver.
type Option func(*Driver)

// WithHTTPClient makes the driver fetch pages through c. The client's cookie
// jar is replaced.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Driver) {
		cc := *c
		d.client = &cc
	}
}

// WithCapabilities sets what Capabilities returns.
func WithCapabilities(caps selenium.Capabilities) Option {
	return func(d *Driver) {
		d.caps = caps
	}
}

// New returns a driver with an empty document loaded, like a browser showing
// about:blank.
func New(opts ...Option) *Driver {
	d := &Driver{
		client: &http.Client{},
		caps:   selenium.Capabilities{"browserName": "fake", "browserVersion": "1.0.0"},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.resetJar()
	return d
}

func (d *Driver) resetJar() {
	jar, _ := cookiejar.New(nil) // only fails for a bad public suffix list
	d.client.Jar = jar
}

func (d *Driver) alive() error {
	if d.quit {
		return errInvalidSession
	}
	return nil
}

// SessionID returns a fixed identifier.
func (d *Driver) SessionID() string { return "fake-session" }

// Capabilities returns the configured capabilities.
func (d *Driver) Capabilities() (selenium.Capabilities, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	return d.caps, nil
}

// SetImplicitWaitTimeout records the timeout. Lookups never wait.
func (d *Driver) SetImplicitWaitTimeout(timeout time.Duration) error {
	if err := d.alive(); err != nil {
		return err
	}
	d.ImplicitWait = timeout
	return nil
}

// SetPageLoadTimeout is accepted and ignored.
func (d *Driver) SetPageLoadTimeout(time.Duration) error { return d.alive() }

// MaximizeWindow records that the window was maximized.
func (d *Driver) MaximizeWindow(string) error {
	if err := d.alive(); err != nil {
		return err
	}
	d.Maximized = true
	return nil
}

// DeleteAllCookies empties the cookie jar.
func (d *Driver) DeleteAllCookies() error {
	if err := d.alive(); err != nil {
		return err
	}
	d.CookieClears++
	d.resetJar()
	return nil
}

// GetCookies returns the cookies visible to the current URL.
func (d *Driver) GetCookies() ([]selenium.Cookie, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if d.url == nil {
		return nil, nil
	}
	var out []selenium.Cookie
	for _, c := range d.client.Jar.Cookies(d.url) {
		out = append(out, selenium.Cookie{Name: c.Name, Value: c.Value, Path: "/", Domain: d.url.Hostname()})
	}
	return out, nil
}

// Get navigates to u.
func (d *Driver) Get(u string) error {
	if err := d.alive(); err != nil {
		return err
	}
	target, err := d.resolve(u)
	if err != nil {
		return err
	}
	return d.fetch(http.MethodGet, target, nil)
}

// Refresh reloads the current URL.
func (d *Driver) Refresh() error {
	if err := d.alive(); err != nil {
		return err
	}
	if d.url == nil {
		return nil
	}
	return d.fetch(http.MethodGet, d.url, nil)
}

// CurrentURL returns the URL of the loaded document.
func (d *Driver) CurrentURL() (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	if d.url == nil {
		return "about:blank", nil
	}
	return d.url.String(), nil
}

// Title returns the document title.
func (d *Driver) Title() (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	if d.doc == nil {
		return "", nil
	}
	return strings.TrimSpace(d.doc.Find("title").First().Text()), nil
}

// PageSource serializes the current DOM.
func (d *Driver) PageSource() (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	if d.doc == nil {
		return "<html><head></head><body></body></html>", nil
	}
	return d.doc.Html()
}

// Log returns Console for the browser log and nothing for the other types.
func (d *Driver) Log(typ log.Type) ([]log.Message, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if typ != log.Browser {
		return nil, nil
	}
	return d.Console, nil
}

// Quit ends the session. Every later call fails with "invalid session id".
func (d *Driver) Quit() error {
	d.QuitCalls++
	if err := d.alive(); err != nil {
		return err
	}
	d.quit = true
	return nil
}

// FindElement returns the first element matching the query.
func (d *Driver) FindElement(by, value string) (selenium.WebElement, error) {
	elems, err := d.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%v: %s=%q", errNoSuchElement, by, value)
	}
	return elems[0], nil
}

// FindElements returns every element matching the query in document order.
func (d *Driver) FindElements(by, value string) ([]selenium.WebElement, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if d.doc == nil {
		return nil, nil
	}
	return d.findIn(d.doc.Nodes[0], by, value)
}

func (d *Driver) findIn(root *html.Node, by, value string) ([]selenium.WebElement, error) {
	nodes, err := query(root, by, value)
	if err != nil {
		return nil, err
	}
	elems := make([]selenium.WebElement, 0, len(nodes))
	for _, n := range nodes {
		elems = append(elems, &element{d: d, node: n, gen: d.gen})
	}
	return elems, nil
}

func (d *Driver) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid argument: %v", err)
	}
	if d.url != nil {
		u = d.url.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("invalid argument: %q is not an absolute URL", ref)
	}
	return u, nil
}

func (d *Driver) fetch(method string, u *url.URL, form url.Values) error {
	var (
		resp *http.Response
		err  error
	)
	switch method {
	case http.MethodPost:
		resp, err = d.client.PostForm(u.String(), form)
	default:
		if form != nil {
			q := *u
			q.RawQuery = form.Encode()
			u = &q
		}
		resp, err = d.client.Get(u.String())
	}
	if err != nil {
		return fmt.Errorf("unknown error: %v", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("unknown error: parsing %s: %v", resp.Request.URL, err)
	}
	d.doc = doc
	d.url = resp.Request.URL
	d.values = make(map[*html.Node]string)
	d.gen++
	d.Visited = append(d.Visited, d.url.String())
	return nil
}

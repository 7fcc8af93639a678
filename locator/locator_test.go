package locator

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"
)

type stubElement struct {
	selenium.WebElement
	id string
}

type stubFinder struct {
	elems map[string][]selenium.WebElement
	err   error

	by, value string
}

func (f *stubFinder) FindElements(by, value string) ([]selenium.WebElement, error) {
	f.by, f.value = by, value
	if f.err != nil {
		return nil, f.err
	}
	return f.elems[value], nil
}

func elems(ids ...string) []selenium.WebElement {
	var out []selenium.WebElement
	for _, id := range ids {
		out = append(out, &stubElement{id: id})
	}
	return out
}

func TestResolve(t *testing.T) {
	finder := &stubFinder{elems: map[string][]selenium.WebElement{
		"one":  elems("a"),
		"two":  elems("a", "b"),
		"none": nil,
	}}

	tests := []struct {
		desc    string
		loc     Locator
		wantID  string
		wantErr error
	}{
		{
			desc:   "single match",
			loc:    CSS("one", "one"),
			wantID: "a",
		},
		{
			desc:    "no match",
			loc:     CSS("none", "none"),
			wantErr: ErrElementNotFound,
		},
		{
			desc:    "two matches",
			loc:     XPath("two", "two"),
			wantErr: ErrAmbiguousElement,
		},
		{
			desc:    "list locator",
			loc:     CSS("two", "two").All(),
			wantErr: ErrWrongCardinality,
		},
	}

	for _, test := range tests {
		got, err := test.loc.Resolve(finder)
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: Resolve() error = %v, want %v", test.desc, err, test.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if id := got.(*stubElement).id; id != test.wantID {
			t.Errorf("%s: Resolve() = %q, want %q", test.desc, id, test.wantID)
		}
	}
}

func TestResolvePassesStrategy(t *testing.T) {
	finder := &stubFinder{elems: map[string][]selenium.WebElement{"username": elems("u")}}
	if _, err := Name("username input", "username").Resolve(finder); err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if finder.by != selenium.ByName || finder.value != "username" {
		t.Errorf("FindElements(%q, %q), want (%q, %q)", finder.by, finder.value, selenium.ByName, "username")
	}
}

func TestResolveAll(t *testing.T) {
	finder := &stubFinder{elems: map[string][]selenium.WebElement{
		"items": elems("x", "y", "z"),
	}}

	got, err := CSS("items", "items").All().ResolveAll(finder)
	if err != nil {
		t.Fatalf("ResolveAll() returned error: %v", err)
	}
	var ids []string
	for _, e := range got {
		ids = append(ids, e.(*stubElement).id)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, ids); diff != "" {
		t.Errorf("ResolveAll() order mismatch (-want +got):\n%s", diff)
	}

	got, err = CSS("missing", "missing").All().ResolveAll(finder)
	if err != nil {
		t.Fatalf("ResolveAll() on an empty list returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ResolveAll() = %d elements, want 0", len(got))
	}
}

func TestResolveDriverErrors(t *testing.T) {
	finder := &stubFinder{err: errors.New("no such element: Unable to locate element")}
	got, err := CSS("x", "x").All().ResolveAll(finder)
	if err != nil || len(got) != 0 {
		t.Errorf("ResolveAll() = %v, %v; want empty list and no error", got, err)
	}
	if _, err := CSS("x", "x").Resolve(finder); !IsNotFound(err) {
		t.Errorf("Resolve() error = %v, want ErrElementNotFound", err)
	}

	finder.err = errors.New("invalid selector: An invalid or illegal selector was specified")
	_, err = CSS("x", "[[").Resolve(finder)
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("Resolve() error = %T, want *ResolveError", err)
	}
	if rerr.Op != "find" {
		t.Errorf("ResolveError.Op = %q, want %q", rerr.Op, "find")
	}

	if _, err := CSS("x", "x").Resolve(nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("Resolve(nil) error = %v, want ErrNoSession", err)
	}
}

func TestWrap(t *testing.T) {
	l := CSS("login button", "button[type='submit']")
	if err := l.Wrap("click", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}

	stale := errors.New("stale element reference: element is not attached to the page document")
	err := l.Wrap("click", stale)
	if !IsStale(err) {
		t.Errorf("Wrap(stale) = %v, want ErrStaleElement", err)
	}

	other := errors.New("element click intercepted")
	err = l.Wrap("click", other)
	if !errors.Is(err, other) {
		t.Errorf("Wrap(other) = %v, want it to wrap %v", err, other)
	}
	if IsStale(err) || IsNotFound(err) {
		t.Errorf("Wrap(other) = %v classified as a resolution failure", err)
	}

	already := &ResolveError{Locator: l, Err: ErrElementNotFound}
	if got := l.Wrap("click", already); got != error(already) {
		t.Errorf("Wrap(*ResolveError) = %v, want it unchanged", got)
	}
}

type driverError struct{ msg string }

func (e *driverError) Error() string { return e.msg }

func TestWrapKeepsStaleCause(t *testing.T) {
	cause := &driverError{msg: "stale element reference: element is not attached to the page document"}
	err := CSS("logout link", "a[href$='logout']").Wrap("click", cause)
	if !IsStale(err) {
		t.Fatalf("Wrap(stale) = %v, want ErrStaleElement", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrap(stale), cause) = false, want true")
	}
	var de *driverError
	if !errors.As(err, &de) || de != cause {
		t.Errorf("errors.As(Wrap(stale), *driverError) = %v, want %v", de, cause)
	}
}

func TestResolveErrorMessage(t *testing.T) {
	err := &ResolveError{Locator: CSS("menu item", "li"), Count: 3, Err: ErrAmbiguousElement}
	want := `menu item (css selector "li", one): ambiguous element: 3 matches`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

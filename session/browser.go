package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidBrowser is returned for a browser family the suite cannot
	// drive.
	ErrInvalidBrowser = errors.New("invalid browser")
	// ErrInvalidPlatform is returned for an unknown operating system name.
	ErrInvalidPlatform = errors.New("invalid platform")
)

// Browser is a supported browser family.
type Browser string

// Supported browsers.
const (
	Chrome  Browser = "chrome"
	Edge    Browser = "edge"
	Firefox Browser = "firefox"
)

// Browsers lists the supported browsers.
func Browsers() []Browser { return []Browser{Chrome, Edge, Firefox} }

// ParseBrowser maps a browser name to a Browser, ignoring case and
// surrounding blanks.
func ParseBrowser(name string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(name)))
	switch b {
	case Chrome, Edge, Firefox:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q (want one of chrome, edge, firefox)", ErrInvalidBrowser, name)
}

// capabilityName is the W3C browserName of b.
func (b Browser) capabilityName() string {
	if b == Edge {
		return "MicrosoftEdge"
	}
	return string(b)
}

// Platform is the operating system a remote browser runs on.
type Platform string

// Known platforms. Any means the grid may choose.
const (
	Any     Platform = ""
	Linux   Platform = "linux"
	Windows Platform = "windows"
	Mac     Platform = "mac"
)

// ParsePlatform maps an operating system name to a Platform, ignoring case
// and surrounding blanks. An empty name is Any.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case Any, Linux, Windows, Mac:
		return p, nil
	}
	return Any, fmt.Errorf("%w: %q (want one of linux, windows, mac)", ErrInvalidPlatform, name)
}

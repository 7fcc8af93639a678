// Package session starts and stops the browser the suite drives.
//
// Start creates a WebDriver session against a local driver process, a
// remote grid or Sauce Labs, prepares the window and opens the application.
// The session is shared by every test case of a run and closed once at the
// end.
package session

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/blang/semver"
	"github.com/hrmqa/orangehrm-selenium/config"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
	"github.com/tebeka/selenium/sauce"
)

// DefaultImplicitWait is how long element lookups wait for a match.
const DefaultImplicitWait = 10 * time.Second

var (
	// ErrNoEndpoint is returned when neither a driver binary, a remote URL nor
	// Sauce Labs credentials are configured.
	ErrNoEndpoint = errors.New("no driver path, remote URL or Sauce Labs credentials configured")
	// ErrBrowserVersion is returned when a minimum browser version is set
	// and the browser is older or does not report a usable version.
	ErrBrowserVersion = errors.New("browser version not accepted")
)

// NewRemote creates the WebDriver session. Tests replace it with an offline
// driver.
var NewRemote = selenium.NewRemote

// SauceOptions configures a Sauce Labs session.
type SauceOptions struct {
	User, AccessKey string
	Capabilities    sauce.Capabilities
}

// Options configures Start.
type Options struct {
	Browser  Browser
	Platform Platform
	// AppURL is opened once the session is ready.
	AppURL string
	// ImplicitWait defaults to DefaultImplicitWait.
	ImplicitWait time.Duration

	// DriverPath starts a local driver process. Port, FrameBuffer and
	// Display only apply to it.
	DriverPath  string
	Port        int
	FrameBuffer bool
	Display     string
	// RemoteURL is used when DriverPath is empty.
	RemoteURL string
	// Sauce is used when DriverPath and RemoteURL are empty.
	Sauce *SauceOptions

	BrowserBinary string
	Headless      bool
	// Proxy is a SOCKS5 host:port for all browser traffic.
	Proxy string
	// MinBrowserVersion rejects older browsers when set.
	MinBrowserVersion string
	// LogLevel enables the browser console log at this level.
	LogLevel log.Level

	Logger logrus.FieldLogger
}

// FromConfig converts the suite configuration.
func FromConfig(c *config.Config) (Options, error) {
	b, err := ParseBrowser(c.Browser)
	if err != nil {
		return Options{}, err
	}
	p, err := ParsePlatform(c.OS)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Browser:           b,
		Platform:          p,
		AppURL:            c.AppURL,
		ImplicitWait:      time.Duration(c.ImplicitWaitSeconds) * time.Second,
		DriverPath:        c.Driver.Path,
		Port:              c.Driver.Port,
		FrameBuffer:       c.Driver.FrameBuffer,
		Display:           c.Driver.Display,
		RemoteURL:         c.Driver.RemoteURL,
		BrowserBinary:     c.Driver.BrowserBinary,
		Headless:          c.Driver.Headless,
		Proxy:             c.Driver.Proxy,
		MinBrowserVersion: c.Driver.MinBrowserVersion,
		LogLevel:          log.Level(c.Driver.LogLevel),
	}
	if c.Sauce.Enabled() {
		opts.Sauce = &SauceOptions{
			User:      c.Sauce.User,
			AccessKey: c.Sauce.AccessKey,
			Capabilities: sauce.Capabilities{
				Platform:    c.Sauce.Platform,
				Version:     c.Sauce.Version,
				BuildNumber: c.Sauce.Build,
				TestName:    "orangehrm-suite",
			},
		}
	}
	return opts, nil
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}

// Session is a running browser.
type Session struct {
	wd      selenium.WebDriver
	service Service
	browser Browser
	version semver.Version
	log     logrus.FieldLogger
	output  io.Closer

	closeOnce sync.Once
	closeErr  error
}

// Start creates the session: it opens the browser, maximizes the window,
// deletes all cookies, sets the implicit wait, checks the browser version
// and navigates to the application. On failure everything started so far is
// torn down.
func Start(opts Options) (*Session, error) {
	if _, err := ParseBrowser(string(opts.Browser)); err != nil {
		return nil, err
	}
	caps, err := Capabilities(opts)
	if err != nil {
		return nil, err
	}

	l := opts.logger().WithField("browser", opts.Browser)
	s := &Session{browser: opts.Browser, log: l}

	addr := opts.RemoteURL
	switch {
	case opts.DriverPath != "":
		cfg := ServiceConfig{
			Browser:     opts.Browser,
			Path:        opts.DriverPath,
			Port:        opts.Port,
			FrameBuffer: opts.FrameBuffer,
			Display:     opts.Display,
		}
		w := l.WriterLevel(logrus.DebugLevel)
		cfg.Output, s.output = w, w
		svc, serviceAddr, err := StartService(cfg)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.service = svc
		addr = serviceAddr
		l.WithFields(logrus.Fields{"driver": opts.DriverPath, "addr": addr}).Info("Driver service started")
	case addr != "":
		// Remote grid.
	case opts.Sauce != nil:
		addr = sauce.Addr(opts.Sauce.User, opts.Sauce.AccessKey)
	default:
		return nil, ErrNoEndpoint
	}

	wd, err := NewRemote(caps, addr)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("creating %s session: %w", opts.Browser, err)
	}
	s.wd = wd
	if err := s.prepare(opts); err != nil {
		s.Close()
		return nil, err
	}
	l.WithFields(logrus.Fields{"session": wd.SessionID(), "version": s.version.String()}).Info("Session started")
	return s, nil
}

func (s *Session) prepare(opts Options) error {
	if err := s.wd.MaximizeWindow(""); err != nil {
		return fmt.Errorf("maximizing window: %w", err)
	}
	if err := s.wd.DeleteAllCookies(); err != nil {
		return fmt.Errorf("deleting cookies: %w", err)
	}
	wait := opts.ImplicitWait
	if wait <= 0 {
		wait = DefaultImplicitWait
	}
	if err := s.wd.SetImplicitWaitTimeout(wait); err != nil {
		return fmt.Errorf("setting implicit wait: %w", err)
	}
	if err := s.checkVersion(opts.MinBrowserVersion); err != nil {
		return err
	}
	if err := s.wd.Get(opts.AppURL); err != nil {
		return fmt.Errorf("opening %s: %w", opts.AppURL, err)
	}
	return nil
}

// checkVersion records the browser version and compares it to min.
func (s *Session) checkVersion(min string) error {
	caps, err := s.wd.Capabilities()
	if err != nil {
		return fmt.Errorf("reading capabilities: %w", err)
	}
	raw, _ := caps["browserVersion"].(string)
	if raw == "" {
		raw, _ = caps["version"].(string)
	}
	known := false
	if raw != "" {
		if v, err := parseVersion(raw); err == nil {
			s.version, known = v, true
		} else {
			s.log.WithError(err).WithField("version", raw).Warn("Unparsable browser version")
		}
	}
	if min == "" {
		return nil
	}
	want, err := semver.Parse(min)
	if err != nil {
		return fmt.Errorf("minimum browser version: %w", err)
	}
	// A minimum cannot be checked against a version the driver did not
	// report, so it fails.
	if !known {
		if raw == "" {
			raw = "unknown"
		}
		return fmt.Errorf("%w: %s version %s, want at least %s", ErrBrowserVersion, s.browser, raw, want)
	}
	if s.version.LT(want) {
		return fmt.Errorf("%w: %s %q, want at least %s", ErrBrowserVersion, s.browser, raw, want)
	}
	return nil
}

// parseVersion reads browser versions such as "120.0.6099.109" or "115.0"
// by keeping the first three components.
func parseVersion(s string) (semver.Version, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ".", 4)
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return semver.ParseTolerant(strings.Join(parts, "."))
}

// Driver returns the WebDriver of the session.
func (s *Session) Driver() selenium.WebDriver { return s.wd }

// Browser returns the browser family of the session.
func (s *Session) Browser() Browser { return s.browser }

// BrowserVersion is the version reported by the browser, zero if unknown.
func (s *Session) BrowserVersion() semver.Version { return s.version }

// BrowserLog returns the console messages logged since the last call. Not
// every driver supports it.
func (s *Session) BrowserLog() ([]log.Message, error) {
	if s == nil || s.wd == nil {
		return nil, errors.New("no session")
	}
	return s.wd.Log(log.Browser)
}

// Close quits the browser and stops the driver process. It is safe to call
// on a nil or partially started Session, and more than once.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		var errs []error
		if s.wd != nil {
			if err := s.wd.Quit(); err != nil {
				errs = append(errs, fmt.Errorf("quitting browser: %w", err))
			}
		}
		if s.service != nil {
			if err := s.service.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stopping driver: %w", err))
			}
		}
		if s.output != nil {
			s.output.Close()
		}
		s.closeErr = errors.Join(errs...)
		s.log.Info("Session closed")
	})
	return s.closeErr
}

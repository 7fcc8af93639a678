// Package e2e runs the test cases in a real browser.
//
// Driver binaries are looked up under ../drivers (see hrmsuite fetch-drivers)
// unless given by flag. Without a driver, a remote URL or Sauce Labs
// credentials the tests are skipped.
//
//	go test ./e2e -browser=firefox -demo
//	go test ./e2e -config=../configs/suite.toml -browser=chrome -headless
package e2e

import (
	"context"
	"flag"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	socks5 "github.com/armon/go-socks5"
	"github.com/golang/glog"
	"github.com/hrmqa/orangehrm-selenium/config"
	"github.com/hrmqa/orangehrm-selenium/internal/demoapp"
	"github.com/hrmqa/orangehrm-selenium/internal/hrmtest"
	"github.com/hrmqa/orangehrm-selenium/pages"
	"github.com/hrmqa/orangehrm-selenium/session"
	"github.com/sirupsen/logrus"
)

var (
	configPath       = flag.String("config", filepath.Join("..", config.DefaultPath), "The suite configuration file.")
	browser          = flag.String("browser", "", "The browser to drive: chrome, edge or firefox. Overrides the configuration file.")
	platform         = flag.String("os", "", "The platform requested from a remote grid. Overrides the configuration file.")
	driverPath       = flag.String("driver_path", "", "The path to the chromedriver, msedgedriver or geckodriver binary. If empty, the newest one under ../drivers is used.")
	browserBinary    = flag.String("browser_binary", "", "The browser binary. If empty, a browser under ../drivers is used when present, otherwise the installed one.")
	headless         = flag.Bool("headless", false, "If true, run the browser without a window.")
	startFrameBuffer = flag.Bool("start_frame_buffer", false, "If true, start an Xvfb subprocess and run the browser in that X server.")
	demo             = flag.Bool("demo", false, "If true, run against the bundled demo application instead of the configured URL.")
	socksProxy       = flag.Bool("socks_proxy", false, "If true, route the browser through an in-process SOCKS5 proxy and check that it was used.")
	strictLabels     = flag.Bool("strict_labels", false, "If true, clicking a missing menu label fails.")
)

const driversDir = "../drivers"

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func findBestPath(glob string, binary bool) string {
	matches, err := filepath.Glob(glob)
	if err != nil {
		glog.Warningf("Error globbing %q: %s", glob, err)
		return ""
	}
	if len(matches) == 0 {
		return ""
	}
	// Iterate backwards: newer versions should be sorted to the end.
	sort.Strings(matches)
	for i := len(matches) - 1; i >= 0; i-- {
		path := matches[i]
		fi, err := os.Stat(path)
		if err != nil {
			glog.Warningf("Error statting %q: %s", path, err)
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		if binary && fi.Mode().Perm()&0111 == 0 {
			continue
		}
		return path
	}
	return ""
}

var driverGlobs = map[session.Browser]string{
	session.Chrome:  "chromedriver*",
	session.Edge:    "msedgedriver*",
	session.Firefox: "geckodriver*",
}

var browserGlobs = map[session.Browser]string{
	session.Chrome:  "chrome-linux/chrome",
	session.Firefox: "firefox/firefox",
}

// loadConfig reads the configuration file and applies the flags.
func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.Load(*configPath, os.LookupEnv)
	if err != nil {
		t.Fatalf("config.Load(%q) returned error: %v", *configPath, err)
	}
	if *browser != "" {
		c.Browser = *browser
	}
	if *platform != "" {
		c.OS = *platform
	}
	if *headless {
		c.Driver.Headless = true
	}
	if *strictLabels {
		c.Pages.StrictLabels = true
	}
	b, err := session.ParseBrowser(c.Browser)
	if err != nil {
		t.Fatal(err)
	}
	if *driverPath != "" {
		c.Driver.Path = *driverPath
	}
	if c.Driver.Path == "" && c.Driver.RemoteURL == "" && !c.Sauce.Enabled() {
		c.Driver.Path = findBestPath(filepath.Join(driversDir, driverGlobs[b]), true)
	}
	if *browserBinary != "" {
		c.Driver.BrowserBinary = *browserBinary
	} else if c.Driver.BrowserBinary == "" && browserGlobs[b] != "" {
		c.Driver.BrowserBinary = findBestPath(filepath.Join(driversDir, browserGlobs[b]), true)
	}
	return c
}

// countingRules allows every request and counts them.
type countingRules struct{ n int64 }

func (r *countingRules) Allow(ctx context.Context, _ *socks5.Request) (context.Context, bool) {
	atomic.AddInt64(&r.n, 1)
	return ctx, true
}

func startProxy(t *testing.T) (string, *countingRules) {
	t.Helper()
	rules := &countingRules{}
	socks, err := socks5.New(&socks5.Config{Rules: rules})
	if err != nil {
		t.Fatalf("socks5.New(_) returned error: %v", err)
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen(_, _) return error: %v", err)
	}

	// Serve until the listener is closed at the end of the test.
	done := make(chan struct{})
	go func() {
		err := socks.Serve(l)
		select {
		case <-done:
			return
		default:
		}
		if err != nil {
			t.Errorf("socks.Serve(_) returned error: %v", err)
		}
	}()
	t.Cleanup(func() {
		close(done)
		l.Close()
	})
	return l.Addr().String(), rules
}

func TestSuite(t *testing.T) {
	c := loadConfig(t)
	if c.Driver.Path == "" && c.Driver.RemoteURL == "" && !c.Sauce.Enabled() {
		t.Skipf("Skipping: no %s driver under %s and no remote URL or Sauce Labs credentials", c.Browser, driversDir)
	}
	if c.Driver.Path != "" {
		if _, err := os.Stat(c.Driver.Path); err != nil {
			t.Skipf("Skipping: driver not found at path %q", c.Driver.Path)
		}
	}

	if *demo {
		srv := httptest.NewServer(demoapp.New())
		defer srv.Close()
		c.AppURL = srv.URL + demoapp.LoginPath
		c.Credentials = config.Credentials{Username: "Admin", Password: "admin123"}
	}

	opts, err := session.FromConfig(c)
	if err != nil {
		t.Fatalf("session.FromConfig() returned error: %v", err)
	}
	if *startFrameBuffer {
		opts.FrameBuffer = true
	}
	var proxy *countingRules
	if *socksProxy {
		opts.Proxy, proxy = startProxy(t)
	}
	logger := logrus.New()
	if !testing.Verbose() {
		logger.SetLevel(logrus.WarnLevel)
	}
	opts.Logger = logger

	s, err := session.Start(opts)
	if err != nil {
		t.Fatalf("session.Start() returned error: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() returned error: %v", err)
		}
	}()
	t.Logf("Running %s %s", s.Browser(), s.BrowserVersion())

	policy := pages.Lenient
	if c.Pages.StrictLabels {
		policy = pages.Strict
	}
	hrmtest.Run(t, hrmtest.NewEnv(s.Driver(), logger, c.Credentials, policy))

	if proxy != nil && atomic.LoadInt64(&proxy.n) == 0 {
		t.Errorf("no browser traffic went through the SOCKS proxy")
	}
}

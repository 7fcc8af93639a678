package session

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/tebeka/selenium"
)

// Service is a running WebDriver server process.
type Service interface {
	Stop() error
}

// ServiceConfig describes the local driver process to start.
type ServiceConfig struct {
	Browser Browser
	// Path is the chromedriver, msedgedriver or geckodriver binary.
	Path string
	// Port to listen on. Zero picks an unused port.
	Port int
	// FrameBuffer starts a private Xvfb server for the browser.
	FrameBuffer bool
	// Display is an existing X display, "x" or "x.y".
	Display string
	// XAuthPath is the Xauthority file for Display.
	XAuthPath string
	// Output receives the driver's log.
	Output io.Writer
}

// StartService starts the driver process described by c and returns it with
// the WebDriver address it serves. Tests replace it to avoid spawning
// processes.
var StartService = startService

func startService(c ServiceConfig) (Service, string, error) {
	if c.FrameBuffer && c.Display != "" {
		return nil, "", fmt.Errorf("frame buffer and display %q are mutually exclusive", c.Display)
	}
	if c.Display != "" && !isDisplay(c.Display) {
		return nil, "", fmt.Errorf("display %q must be of the format 'x' or 'x.y' where x and y are integers", c.Display)
	}

	port := c.Port
	if port == 0 {
		p, err := pickUnusedPort()
		if err != nil {
			return nil, "", fmt.Errorf("picking a port: %w", err)
		}
		port = p
	}

	var opts []selenium.ServiceOption
	switch {
	case c.FrameBuffer:
		opts = append(opts, selenium.StartFrameBuffer())
	case c.Display != "":
		opts = append(opts, selenium.Display(c.Display, c.XAuthPath))
	}
	if c.Output != nil {
		opts = append(opts, selenium.Output(c.Output))
	}

	switch c.Browser {
	case Chrome, Edge:
		// msedgedriver takes the chromedriver flags.
		s, err := selenium.NewChromeDriverService(c.Path, port, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("starting %s: %w", c.Path, err)
		}
		return s, fmt.Sprintf("http://127.0.0.1:%d/wd/hub", port), nil
	case Firefox:
		s, err := selenium.NewGeckoDriverService(c.Path, port, opts...)
		if err != nil {
			return nil, "", fmt.Errorf("starting %s: %w", c.Path, err)
		}
		return s, fmt.Sprintf("http://127.0.0.1:%d", port), nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrInvalidBrowser, c.Browser)
	}
}

// isDisplay validates that the given disp is in the format "x" or "x.y", where
// x and y are both integers.
func isDisplay(disp string) bool {
	ds := strings.Split(disp, ".")
	if len(ds) > 2 {
		return false
	}

	for _, d := range ds {
		if _, err := strconv.Atoi(d); err != nil {
			return false
		}
	}
	return true
}

func pickUnusedPort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, err
	}
	return port, nil
}

package session

import (
	"fmt"
	"path/filepath"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"
)

// edgeCapabilitiesKey holds msedgedriver options. They have the shape of the
// chromedriver ones.
const edgeCapabilitiesKey = "ms:edgeOptions"

// Capabilities builds the capabilities requested when the session is
// created.
func Capabilities(opts Options) (selenium.Capabilities, error) {
	if _, err := ParseBrowser(string(opts.Browser)); err != nil {
		return nil, err
	}
	caps := selenium.Capabilities{"browserName": opts.Browser.capabilityName()}

	switch opts.Browser {
	case Chrome, Edge:
		c := chrome.Capabilities{
			Path: opts.BrowserBinary,
			// Browsers outside the default install location cannot use the
			// setuid sandbox.
			Args: []string{"--no-sandbox"},
			W3C:  true,
		}
		if opts.Headless {
			c.Args = append(c.Args, "--headless=new")
		}
		if opts.Proxy != "" {
			// Proxy loopback traffic too. https://crbug.com/899126
			c.Args = append(c.Args, "--proxy-bypass-list=<-loopback>")
		}
		if opts.Browser == Edge {
			caps[edgeCapabilitiesKey] = c
		} else {
			caps.AddChrome(c)
		}
		if opts.LogLevel != "" {
			caps.SetLogLevel(log.Browser, opts.LogLevel)
		}
	case Firefox:
		f := firefox.Capabilities{}
		if opts.BrowserBinary != "" {
			p, err := filepath.Abs(opts.BrowserBinary)
			if err != nil {
				return nil, fmt.Errorf("firefox binary: %w", err)
			}
			f.Binary = p
		}
		if opts.Headless {
			f.Args = append(f.Args, "-headless")
		}
		if opts.LogLevel == log.Debug || opts.LogLevel == log.All {
			f.Log = &firefox.Log{Level: firefox.Trace}
		}
		if opts.Proxy != "" {
			// Firefox bypasses the proxy for localhost unless told otherwise.
			f.Prefs = map[string]interface{}{
				"network.proxy.no_proxies_on":             "",
				"network.proxy.allow_hijacking_localhost": true,
			}
		}
		caps.AddFirefox(f)
	}

	if opts.Proxy != "" {
		caps.AddProxy(selenium.Proxy{
			Type:         selenium.Manual,
			SOCKS:        opts.Proxy,
			SOCKSVersion: 5,
		})
	}
	if opts.Platform != Any && opts.DriverPath == "" {
		caps["platformName"] = string(opts.Platform)
	}

	if opts.Sauce != nil {
		sc := opts.Sauce.Capabilities
		if sc.Browser == "" {
			sc.Browser = opts.Browser.capabilityName()
		}
		m, err := sc.ToMap()
		if err != nil {
			return nil, fmt.Errorf("sauce capabilities: %w", err)
		}
		for k, v := range m {
			caps[k] = v
		}
	}
	return caps, nil
}

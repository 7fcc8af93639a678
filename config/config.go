// Package config loads the suite configuration.
//
// The configuration is a TOML file, by default configs/suite.toml relative to
// the working directory. A few keys can be overridden from the environment so
// CI jobs can point the suite at another instance or browser without editing
// the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mstoykov/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where the configuration file is looked up.
const DefaultPath = "configs/suite.toml"

// DefaultImplicitWait is the element wait timeout, in seconds, used when the
// file does not set one.
const DefaultImplicitWait = 10

// ErrInvalidConfig wraps every error returned by Load and Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the suite configuration.
type Config struct {
	// AppURL is the page the browser opens when the session starts.
	AppURL string `toml:"app_url" validate:"required,url"`
	// OS is the platform the browser should run on. Only remote grids use
	// it.
	OS string `toml:"os" validate:"omitempty,oneof=linux windows mac"`
	// Browser is chrome, edge or firefox.
	Browser             string `toml:"browser" validate:"required"`
	ImplicitWaitSeconds int    `toml:"implicit_wait_seconds" validate:"gte=0"`

	Credentials Credentials `toml:"credentials"`
	Driver      Driver      `toml:"driver"`
	Pages       Pages       `toml:"pages"`
	Sauce       Sauce       `toml:"sauce"`
}

// Credentials of the account the suite signs in with.
type Credentials struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Driver says how the browser is started.
type Driver struct {
	// Path is a local chromedriver, msedgedriver or geckodriver binary. When
	// empty the suite connects to RemoteURL or Sauce Labs instead.
	Path string `toml:"path"`
	// Port the driver listens on. Zero picks a free one.
	Port          int    `toml:"port" validate:"gte=0,lte=65535"`
	BrowserBinary string `toml:"browser_binary"`
	Headless      bool   `toml:"headless"`
	// FrameBuffer runs the browser inside a private Xvfb server.
	FrameBuffer bool `toml:"frame_buffer"`
	// Display is an existing X display, "x" or "x.y".
	Display   string `toml:"display"`
	RemoteURL string `toml:"remote_url" validate:"omitempty,url"`
	// Proxy is a SOCKS5 host:port all browser traffic goes through.
	Proxy             string `toml:"proxy" validate:"omitempty,hostname_port"`
	MinBrowserVersion string `toml:"min_browser_version" validate:"omitempty,semver"`
	LogLevel          string `toml:"log_level" validate:"omitempty,oneof=OFF SEVERE WARNING INFO DEBUG ALL"`
}

// Pages configures the page objects.
type Pages struct {
	// StrictLabels makes clicking a missing menu label an error instead of a
	// no-op.
	StrictLabels bool `toml:"strict_labels"`
}

// Sauce holds Sauce Labs credentials. They are used when neither a driver
// path nor a remote URL is set.
type Sauce struct {
	User      string `toml:"user"`
	AccessKey string `toml:"access_key"`
	Platform  string `toml:"platform"`
	Version   string `toml:"version"`
	Build     string `toml:"build"`
}

// Enabled reports whether Sauce Labs credentials are set.
func (s Sauce) Enabled() bool { return s.User != "" && s.AccessKey != "" }

// env lists the keys that can be overridden from the environment.
type env struct {
	AppURL       *string `envconfig:"HRM_APP_URL"`
	Browser      *string `envconfig:"HRM_BROWSER"`
	OS           *string `envconfig:"HRM_OS"`
	DriverPath   *string `envconfig:"HRM_DRIVER_PATH"`
	RemoteURL    *string `envconfig:"HRM_REMOTE_URL"`
	Headless     *bool   `envconfig:"HRM_HEADLESS"`
	StrictLabels *bool   `envconfig:"HRM_STRICT_LABELS"`
	SauceUser    *string `envconfig:"SAUCE_USERNAME"`
	SauceKey     *string `envconfig:"SAUCE_ACCESS_KEY"`
}

// Default returns the configuration used for keys the file leaves out.
func Default() Config {
	return Config{
		Browser:             "chrome",
		ImplicitWaitSeconds: DefaultImplicitWait,
		Credentials:         Credentials{Username: "Admin", Password: "admin123"},
	}
}

// Load reads the file at path, applies environment overrides looked up with
// lookup and validates the result. A nil lookup reads the process
// environment.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return Parse(data, lookup)
}

// Parse is Load for configuration already in memory.
func Parse(data []byte, lookup func(string) (string, bool)) (*Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}
	c.OS = strings.ToLower(strings.TrimSpace(c.OS))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var e env
	if err := envconfig.Process("", &e, lookup); err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalidConfig, err)
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.AppURL, e.AppURL)
	set(&c.Browser, e.Browser)
	set(&c.OS, e.OS)
	set(&c.Driver.Path, e.DriverPath)
	set(&c.Driver.RemoteURL, e.RemoteURL)
	set(&c.Sauce.User, e.SauceUser)
	set(&c.Sauce.AccessKey, e.SauceKey)
	if e.Headless != nil {
		c.Driver.Headless = *e.Headless
	}
	if e.StrictLabels != nil {
		c.Pages.StrictLabels = *e.StrictLabels
	}
	return nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		return name
	})
	return v
}()

// Validate checks the field constraints. Errors name the TOML keys that
// failed.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

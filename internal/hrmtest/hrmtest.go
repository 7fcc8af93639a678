// Package hrmtest holds the OrangeHRM test cases. They are kept apart from
// any _test.go file so the same cases run under go test (see Run) and from
// the hrmsuite command (see RunCases).
//
// Cases share one browser session and run in priority order: the login cases
// leave the browser signed in for the dashboard and logout cases.
package hrmtest

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hrmqa/orangehrm-selenium/config"
	"github.com/hrmqa/orangehrm-selenium/pages"
	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/log"
)

// T is the part of testing.TB the cases use. Failed checks are reported
// through Errorf and the case keeps going; FailNow stops the case.
type T interface {
	Helper()
	Errorf(format string, args ...interface{})
	FailNow()
	Failed() bool
	Name() string
}

// Env is what a case runs against.
type Env struct {
	// Driver is the shared browser session.
	Driver selenium.WebDriver
	// Binding binds page objects to Driver.
	Binding     *pages.Binding
	Log         logrus.FieldLogger
	Credentials config.Credentials
}

// NewEnv binds page objects to wd with the given label policy.
func NewEnv(wd selenium.WebDriver, l logrus.FieldLogger, creds config.Credentials, policy pages.LabelPolicy) *Env {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Env{
		Driver:      wd,
		Binding:     pages.Bind(wd, pages.WithLabelPolicy(policy), pages.WithLogger(l)),
		Log:         l,
		Credentials: creds,
	}
}

// Case is one test case.
type Case struct {
	Name string
	// Priority orders the cases, lowest first.
	Priority int
	Run      func(t T, env *Env)
}

// Cases returns every case in the order it must run.
func Cases() []Case {
	cases := append(loginCases(), dashboardCases()...)
	cases = append(cases, logoutCases()...)
	sort.SliceStable(cases, func(i, j int) bool { return cases[i].Priority < cases[j].Priority })
	return cases
}

// Run runs every case as a subtest of t.
func Run(t *testing.T, env *Env) {
	for _, c := range Cases() {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			runCase(t, env, c)
		})
	}
}

func runCase(t T, env *Env, c Case) {
	l := env.Log.WithFields(logrus.Fields{"case": c.Name, "priority": c.Priority})
	l.Info("Test case started")
	start := time.Now()
	defer func() {
		result := "pass"
		if t.Failed() {
			result = "fail"
		}
		l.WithFields(logrus.Fields{"result": result, "elapsed": time.Since(start).Round(time.Millisecond)}).Info("Test case completed")
		logConsole(l, env.Driver)
	}()
	ce := *env
	ce.Log = l
	c.Run(t, &ce)
}

// logConsole copies the browser console to the log. Drivers without a log
// endpoint are skipped quietly.
func logConsole(l logrus.FieldLogger, wd selenium.WebDriver) {
	if wd == nil {
		return
	}
	msgs, err := wd.Log(log.Browser)
	if err != nil {
		l.WithError(err).Debug("Browser log unavailable")
		return
	}
	for _, m := range msgs {
		l.WithFields(logrus.Fields{"browser_level": m.Level, "at": m.Timestamp}).Info("Browser: " + m.Message)
	}
}

// Result is the outcome of one case run by RunCases.
type Result struct {
	Case     Case
	Failed   bool
	Messages []string
	Elapsed  time.Duration
}

func (r Result) String() string {
	status := "PASS"
	if r.Failed {
		status = "FAIL"
	}
	s := fmt.Sprintf("--- %s: %s (%.2fs)", status, r.Case.Name, r.Elapsed.Seconds())
	for _, m := range r.Messages {
		s += "\n    " + strings.ReplaceAll(m, "\n", "\n    ")
	}
	return s
}

// RunCases runs cases in the given order outside of go test.
func RunCases(env *Env, cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		r := &recorder{name: c.Name}
		start := time.Now()
		done := make(chan struct{})
		// FailNow exits the goroutine like it does in package testing.
		go func() {
			defer close(done)
			runCase(r, env, c)
		}()
		<-done
		results = append(results, Result{Case: c, Failed: r.Failed(), Messages: r.messages(), Elapsed: time.Since(start)})
	}
	return results
}

// recorder implements T for RunCases.
type recorder struct {
	name string

	mu     sync.Mutex
	failed bool
	msgs   []string
}

func (r *recorder) Helper()      {}
func (r *recorder) Name() string { return r.name }

func (r *recorder) Errorf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	r.msgs = append(r.msgs, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *recorder) FailNow() {
	r.mu.Lock()
	r.failed = true
	r.mu.Unlock()
	runtime.Goexit()
}

func (r *recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

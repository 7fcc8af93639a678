package hrmtest

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hrmqa/orangehrm-selenium/config"
	"github.com/hrmqa/orangehrm-selenium/internal/demoapp"
	"github.com/hrmqa/orangehrm-selenium/internal/fakedriver"
	"github.com/hrmqa/orangehrm-selenium/pages"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tebeka/selenium/log"
)

// newEnv serves the demo application and returns an Env showing its login
// screen, as a freshly started session would.
func newEnv(t *testing.T, policy pages.LabelPolicy) (*Env, *fakedriver.Driver, *logtest.Hook) {
	t.Helper()
	srv := httptest.NewServer(demoapp.New())
	t.Cleanup(srv.Close)

	d := fakedriver.New(fakedriver.WithHTTPClient(srv.Client()))
	require.NoError(t, d.Get(srv.URL+demoapp.LoginPath))

	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	creds := config.Credentials{Username: "Admin", Password: "admin123"}
	return NewEnv(d, l, creds, policy), d, hook
}

func TestCasesOrder(t *testing.T) {
	var got []string
	prev := 0
	for _, c := range Cases() {
		if c.Priority < prev {
			t.Errorf("case %s (priority %d) runs after priority %d", c.Name, c.Priority, prev)
		}
		prev = c.Priority
		got = append(got, c.Name)
	}
	want := []string{
		"LoginWithEmptyUsernameAndPassword",
		"LoginWithInvalidUsernameAndPassword",
		"LoginWithValidUsernameAndPassword",
		"DashboardContent",
		"SideNavigationModules",
		"UnknownMenuLabel",
		"Logout",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Cases() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLenient(t *testing.T) {
	env, d, _ := newEnv(t, pages.Lenient)
	Run(t, env)

	u, err := d.CurrentURL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, demoapp.LoginPath), "session ends on the login screen, got %s", u)
}

func TestRunStrict(t *testing.T) {
	env, _, _ := newEnv(t, pages.Strict)
	Run(t, env)
}

func TestRunCases(t *testing.T) {
	env, d, hook := newEnv(t, pages.Lenient)
	d.Console = []log.Message{{Level: log.Severe, Message: "favicon.ico 404"}}

	results := RunCases(env, Cases())
	require.Len(t, results, len(Cases()))
	for _, r := range results {
		assert.False(t, r.Failed, "%s", r)
		assert.Equal(t, "--- PASS: "+r.Case.Name, strings.SplitN(r.String(), " (", 2)[0])
	}

	var started, completed, console int
	for _, e := range hook.AllEntries() {
		switch {
		case e.Message == "Test case started":
			started++
		case e.Message == "Test case completed":
			completed++
			assert.Equal(t, "pass", e.Data["result"])
		case e.Message == "Browser: favicon.ico 404":
			console++
		default:
			continue
		}
		if _, ok := e.Data["case"]; !ok {
			t.Errorf("log entry %q has no case field", e.Message)
		}
	}
	assert.Equal(t, len(results), started)
	assert.Equal(t, len(results), completed)
	assert.Equal(t, len(results), console)
}

func TestRunCasesFailures(t *testing.T) {
	env, _, hook := newEnv(t, pages.Lenient)
	var reached []string
	cases := []Case{
		{Name: "Soft", Priority: 1, Run: func(t T, env *Env) {
			assert.Equal(t, 1, 2, "first")
			assert.True(t, false, "second")
			reached = append(reached, "Soft")
		}},
		{Name: "Hard", Priority: 2, Run: func(t T, env *Env) {
			require.True(t, false, "stop")
			reached = append(reached, "Hard")
		}},
		{Name: "Missing", Priority: 3, Run: func(t T, env *Env) {
			// The login screen has no dashboard.
			must(t, pages.NewDashboardPage(env.Binding).IsBrandBannerDisplayed, "Dashboard not loaded!")
		}},
		{Name: "Fine", Priority: 4, Run: func(t T, env *Env) {
			reached = append(reached, "Fine")
		}},
	}

	results := RunCases(env, cases)
	require.Len(t, results, 4)
	if diff := cmp.Diff([]string{"Soft", "Fine"}, reached); diff != "" {
		t.Errorf("cases reached their end (-want +got):\n%s", diff)
	}

	soft := results[0]
	assert.True(t, soft.Failed)
	require.Len(t, soft.Messages, 2)
	assert.Contains(t, soft.Messages[0], "first")
	assert.Contains(t, soft.Messages[1], "second")
	assert.True(t, results[1].Failed)
	assert.True(t, results[2].Failed)
	assert.Contains(t, strings.Join(results[2].Messages, "\n"), "Dashboard not loaded!")
	assert.False(t, results[3].Failed)
	assert.True(t, strings.HasPrefix(results[1].String(), "--- FAIL: Hard"))

	var outcomes []string
	for _, e := range hook.AllEntries() {
		if e.Message == "Test case completed" {
			outcomes = append(outcomes, e.Data["result"].(string))
		}
	}
	if diff := cmp.Diff([]string{"fail", "fail", "fail", "pass"}, outcomes); diff != "" {
		t.Errorf("logged results mismatch (-want +got):\n%s", diff)
	}
}

func TestLogoutNeedsSignedInSession(t *testing.T) {
	env, _, _ := newEnv(t, pages.Lenient)
	results := RunCases(env, logoutCases())
	require.Len(t, results, 1)
	assert.True(t, results[0].Failed, "logout passed without a signed-in session")
}

func TestUnknownMenuLabelStrictReportsMiss(t *testing.T) {
	for _, policy := range []pages.LabelPolicy{pages.Lenient, pages.Strict} {
		env, _, _ := newEnv(t, policy)
		signIn := RunCases(env, []Case{loginCases()[2]})
		require.False(t, signIn[0].Failed, "sign in: %s", signIn[0])

		var miss error
		results := RunCases(env, []Case{{Name: "Probe", Run: func(t T, env *Env) {
			miss = pages.NewNavBar(env.Binding).ClickMenuItemByLabel(unknownLabel)
		}}})
		require.False(t, results[0].Failed)
		if policy == pages.Strict {
			assert.ErrorIs(t, miss, pages.ErrLabelNotFound)
		} else {
			assert.NoError(t, miss)
		}

		results = RunCases(env, dashboardCases()[2:])
		assert.False(t, results[0].Failed, "%s: %s", policy, results[0])
	}
}

package hrmtest

import (
	"github.com/hrmqa/orangehrm-selenium/pages"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unknownLabel names no item of the user menu or the side menu.
const unknownLabel = "Payroll"

func loginCases() []Case {
	return []Case{
		{Name: "LoginWithEmptyUsernameAndPassword", Priority: 1, Run: loginWithBlankCredentials},
		{Name: "LoginWithInvalidUsernameAndPassword", Priority: 2, Run: loginWithInvalidCredentials},
		{Name: "LoginWithValidUsernameAndPassword", Priority: 3, Run: loginWithValidCredentials},
	}
}

func dashboardCases() []Case {
	return []Case{
		{Name: "DashboardContent", Priority: 4, Run: dashboardContent},
		{Name: "SideNavigationModules", Priority: 5, Run: sideNavigationModules},
		{Name: "UnknownMenuLabel", Priority: 6, Run: unknownMenuLabel},
	}
}

func logoutCases() []Case {
	return []Case{
		{Name: "Logout", Priority: 99, Run: logout},
	}
}

// check reports a failed check when query errors or does not return want.
func check(t T, query func() (bool, error), want bool, msg string) bool {
	t.Helper()
	got, err := query()
	if !assert.NoError(t, err, msg) {
		return false
	}
	return assert.Equal(t, want, got, msg)
}

// must stops the case when query errors or returns false.
func must(t T, query func() (bool, error), msg string) {
	t.Helper()
	got, err := query()
	require.NoError(t, err, msg)
	require.True(t, got, msg)
}

func loginWithBlankCredentials(t T, env *Env) {
	lp := pages.NewLoginPage(env.Binding)
	require.NoError(t, lp.Login("       ", "      "))
	env.Log.Info("Submitted login with empty username and password")

	required, err := lp.IsRequiredFieldErrorDisplayed()
	env.Log.WithField("displayed", required).Info("Required field error")
	assert.NoError(t, err)
	assert.True(t, required, "Required error should be displayed.")
	check(t, lp.IsInvalidCredentialsErrorDisplayed, false, "Blank credentials should not be reported as invalid.")
	check(t, lp.IsLogoDisplayed, true, "Login page logo should be displayed.")
}

func loginWithInvalidCredentials(t T, env *Env) {
	lp := pages.NewLoginPage(env.Binding)
	require.NoError(t, lp.Login("yash", "8787021710"))
	env.Log.Info("Submitted login with invalid username and password")

	invalid, err := lp.IsInvalidCredentialsErrorDisplayed()
	env.Log.WithField("displayed", invalid).Info("Invalid credentials error")
	assert.NoError(t, err)
	assert.True(t, invalid, "Invalid Credentials error should be displayed.")
	if invalid {
		msg, err := lp.InvalidCredentialsMessage()
		assert.NoError(t, err)
		assert.Equal(t, "Invalid credentials", msg)
	}
	check(t, lp.IsLogoDisplayed, true, "Login page logo should be displayed.")
}

func loginWithValidCredentials(t T, env *Env) {
	lp := pages.NewLoginPage(env.Binding)
	require.NoError(t, lp.Login(env.Credentials.Username, env.Credentials.Password))
	env.Log.WithField("username", env.Credentials.Username).Info("Submitted login with valid username and password")

	dp := pages.NewDashboardPage(env.Binding)
	buzz, err := dp.IsBuzzWidgetDisplayed()
	assert.NoError(t, err)
	onLeave, err := dp.IsOnLeaveWidgetDisplayed()
	assert.NoError(t, err)
	env.Log.WithFields(logrus.Fields{"buzz": buzz, "on_leave": onLeave}).Info("Dashboard widgets")
	assert.True(t, buzz && onLeave, "Dashboard widgets should be displayed after successful login.")
}

func dashboardContent(t T, env *Env) {
	dp := pages.NewDashboardPage(env.Binding)

	title, err := dp.BreadcrumbTitle()
	assert.NoError(t, err)
	assert.Equal(t, "Dashboard", title)
	check(t, dp.IsSidePanelDisplayed, true, "Side panel should be displayed.")
	check(t, dp.Header().IsUserAreaDisplayed, true, "User area should be displayed.")
	name, err := dp.Header().UserName()
	assert.NoError(t, err)
	assert.NotEmpty(t, name, "User name should be shown.")

	names, err := dp.MainMenuItemNames()
	assert.NoError(t, err)
	var labels []string
	for _, m := range pages.Modules() {
		labels = append(labels, m.Label())
	}
	assert.Subset(t, names, labels, "Side menu should list every module.")

	check(t, dp.IsSubUnitWidgetDisplayed, true, "Sub unit widget should be displayed.")
	check(t, dp.IsSubUnitPieChartDisplayed, true, "Sub unit chart should be displayed.")
	check(t, dp.IsLocationWidgetDisplayed, true, "Location widget should be displayed.")
	check(t, dp.IsLocationPieChartDisplayed, true, "Location chart should be displayed.")

	posts, err := dp.BuzzPostContents()
	assert.NoError(t, err)
	authors, err := dp.BuzzPostEmployeeNames()
	assert.NoError(t, err)
	assert.Len(t, authors, len(posts), "Every buzz post should name its author.")
	subUnits, err := dp.SubUnitLegendNames()
	assert.NoError(t, err)
	locations, err := dp.LocationLegendNames()
	assert.NoError(t, err)
	footer, err := dp.FooterCopyrights()
	assert.NoError(t, err)
	assert.NotEmpty(t, footer, "Footer should be displayed.")
	env.Log.WithFields(logrus.Fields{
		"posts":     len(posts),
		"sub_units": subUnits,
		"locations": locations,
	}).Info("Dashboard content")
}

func sideNavigationModules(t T, env *Env) {
	dp := pages.NewDashboardPage(env.Binding)
	nav := dp.NavBar()
	for _, m := range pages.Modules() {
		m := m
		check(t, func() (bool, error) { return nav.IsModuleDisplayed(m) }, true, m.Label()+" should be in the side menu.")
	}

	for _, m := range []pages.Module{pages.PIM, pages.Dashboard} {
		require.NoError(t, nav.ClickModule(m))
		title, err := dp.BreadcrumbTitle()
		assert.NoError(t, err)
		assert.Equal(t, m.Label(), title, "Breadcrumb after opening %s.", m)
		env.Log.WithField("module", m.Label()).Info("Opened module")
	}
}

// unknownMenuLabel clicks a label neither menu has. The view must not change;
// under the strict policy the miss is an error.
func unknownMenuLabel(t T, env *Env) {
	strict := env.Binding.Policy() == pages.Strict
	checkMiss := func(err error) {
		t.Helper()
		if strict {
			assert.ErrorIs(t, err, pages.ErrLabelNotFound)
		} else {
			assert.NoError(t, err)
		}
	}

	before, err := env.Driver.CurrentURL()
	require.NoError(t, err)

	h := pages.NewHeader(env.Binding)
	require.NoError(t, h.OpenUserDropdown())
	items, err := h.UserDropdownMenuItems()
	assert.NoError(t, err)
	assert.NotContains(t, items, unknownLabel)
	checkMiss(h.ClickUserDropdownMenuItem(unknownLabel))
	if open, err := h.IsUserDropdownMenuDisplayed(); err == nil && open {
		require.NoError(t, h.OpenUserDropdown())
	}

	checkMiss(pages.NewNavBar(env.Binding).ClickMenuItemByLabel(unknownLabel))

	after, err := env.Driver.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, before, after, "An unknown label should leave the view unchanged.")
	env.Log.WithField("policy", env.Binding.Policy()).Info("Unknown label handled")
}

// logout assumes the earlier cases left the browser signed in.
func logout(t T, env *Env) {
	dp := pages.NewDashboardPage(env.Binding)
	h := dp.Header()

	must(t, dp.IsBrandBannerDisplayed, "Dashboard not loaded!")
	require.NoError(t, h.OpenUserDropdown())
	must(t, h.IsUserDropdownMenuDisplayed, "User dropdown menu not displayed!")
	require.NoError(t, h.ClickLogout())
	env.Log.Info("Clicked logout")

	must(t, pages.NewLoginPage(env.Binding).IsLogoDisplayed, "Logout failed! Login page not displayed.")
}

package pages

import "github.com/hrmqa/orangehrm-selenium/locator"

var (
	buzzWidgetHeader = locator.XPath("buzz widget header", "//p[text()='Buzz Latest Posts']")
	buzzPostCards    = locator.CSS("buzz post cards", ".orangehrm-buzz-widget-card").All()
	buzzPostBody     = locator.CSS("buzz post body", ".orangehrm-buzz-widget-body")
	buzzPostEmployee = locator.CSS("buzz post employee", ".orangehrm-buzz-widget-header-emp")

	onLeaveHeader  = locator.XPath("on leave widget header", "//p[text()='Employees on Leave Today']")
	noLeaveMessage = locator.XPath("no employees on leave message", "//div[contains(@class,'orangehrm-dashboard-widget-body-nocontent')]/p")

	subUnitHeader = locator.XPath("sub unit widget header", "//p[text()='Employee Distribution by Sub Unit']")
	subUnitChart  = locator.XPath("sub unit pie chart", "//p[text()='Employee Distribution by Sub Unit']/ancestor::div[contains(@class,'orangehrm-dashboard-widget')]/descendant::canvas")
	subUnitLegend = locator.XPath("sub unit legend", "//p[text()='Employee Distribution by Sub Unit']/ancestor::div[contains(@class,'orangehrm-dashboard-widget')]/descendant::ul[contains(@class,'oxd-chart-legend')]/li/span[@title]").All()

	locationHeader = locator.XPath("location widget header", "//p[text()='Employee Distribution by Location']")
	locationChart  = locator.XPath("location pie chart", "//p[text()='Employee Distribution by Location']/ancestor::div[contains(@class,'orangehrm-dashboard-widget')]/descendant::canvas")
	locationLegend = locator.XPath("location legend", "//p[text()='Employee Distribution by Location']/ancestor::div[contains(@class,'orangehrm-dashboard-widget')]/descendant::ul[contains(@class,'oxd-chart-legend')]/li/span[@title]").All()

	footerCopyrights = locator.CSS("footer copyright lines", ".oxd-layout-footer .orangehrm-copyright").All()
)

// DashboardPage is the landing page after sign-in. The header and side
// panel are reached through Header and NavBar.
type DashboardPage struct {
	*Binding

	header *Header
	nav    *NavBar
}

// NewDashboardPage returns a DashboardPage bound to b.
func NewDashboardPage(b *Binding) *DashboardPage {
	p := new(DashboardPage)
	p.Init(b)
	return p
}

// Init implements Page. The composed Header and NavBar share b.
func (p *DashboardPage) Init(b *Binding) {
	p.Binding = b
	p.header = NewHeader(b)
	p.nav = NewNavBar(b)
}

// Header returns the top bar of the page.
func (p *DashboardPage) Header() *Header { return p.header }

// NavBar returns the side panel of the page.
func (p *DashboardPage) NavBar() *NavBar { return p.nav }

// BreadcrumbTitle returns the module title shown in the header.
func (p *DashboardPage) BreadcrumbTitle() (string, error) {
	return p.header.BreadcrumbTitle()
}

// IsSidePanelDisplayed reports whether the side panel is shown.
func (p *DashboardPage) IsSidePanelDisplayed() (bool, error) {
	return p.nav.IsSidePanelPresent()
}

// MainMenuItemNames returns the side menu labels in menu order.
func (p *DashboardPage) MainMenuItemNames() ([]string, error) {
	return p.nav.MainMenuItemNames()
}

// ClickMenuItemByName clicks a side menu entry by its label.
func (p *DashboardPage) ClickMenuItemByName(name string) error {
	return p.nav.ClickMenuItemByLabel(name)
}

// IsBrandBannerDisplayed reports whether the brand banner is shown.
func (p *DashboardPage) IsBrandBannerDisplayed() (bool, error) {
	return p.nav.IsBrandBannerDisplayed()
}

// SearchMainMenu types keyword into the menu filter. It does nothing when
// the filter is not shown.
func (p *DashboardPage) SearchMainMenu(keyword string) error {
	shown, err := p.anyDisplayed(mainMenuSearchIn.All())
	if err != nil || !shown {
		return err
	}
	return p.typeText(mainMenuSearchIn, keyword)
}

// IsBuzzWidgetDisplayed reports whether the Buzz Latest Posts widget is shown.
func (p *DashboardPage) IsBuzzWidgetDisplayed() (bool, error) {
	return p.displayed(buzzWidgetHeader)
}

// BuzzPostContents returns the text of every Buzz post, newest first.
func (p *DashboardPage) BuzzPostContents() ([]string, error) {
	return p.nestedTexts(buzzPostCards, buzzPostBody)
}

// BuzzPostEmployeeNames returns the author of every Buzz post, in the order
// of BuzzPostContents.
func (p *DashboardPage) BuzzPostEmployeeNames() ([]string, error) {
	return p.nestedTexts(buzzPostCards, buzzPostEmployee)
}

// IsOnLeaveWidgetDisplayed reports whether the Employees on Leave widget is shown.
func (p *DashboardPage) IsOnLeaveWidgetDisplayed() (bool, error) {
	return p.displayed(onLeaveHeader)
}

// NoEmployeesOnLeaveMessage returns the placeholder shown when nobody is on
// leave. It fails when the widget lists employees instead.
func (p *DashboardPage) NoEmployeesOnLeaveMessage() (string, error) {
	return p.text(noLeaveMessage)
}

// IsSubUnitWidgetDisplayed reports whether the sub unit distribution widget is shown.
func (p *DashboardPage) IsSubUnitWidgetDisplayed() (bool, error) {
	return p.displayed(subUnitHeader)
}

// SubUnitLegendNames returns the legend of the sub unit chart.
func (p *DashboardPage) SubUnitLegendNames() ([]string, error) {
	return p.texts(subUnitLegend)
}

// IsSubUnitPieChartDisplayed reports whether the sub unit chart is drawn.
func (p *DashboardPage) IsSubUnitPieChartDisplayed() (bool, error) {
	return p.displayed(subUnitChart)
}

// IsLocationWidgetDisplayed reports whether the location distribution widget is shown.
func (p *DashboardPage) IsLocationWidgetDisplayed() (bool, error) {
	return p.displayed(locationHeader)
}

// LocationLegendNames returns the legend of the location chart.
func (p *DashboardPage) LocationLegendNames() ([]string, error) {
	return p.texts(locationLegend)
}

// IsLocationPieChartDisplayed reports whether the location chart is drawn.
func (p *DashboardPage) IsLocationPieChartDisplayed() (bool, error) {
	return p.displayed(locationChart)
}

// FooterCopyrights returns the footer lines top to bottom.
func (p *DashboardPage) FooterCopyrights() ([]string, error) {
	return p.texts(footerCopyrights)
}

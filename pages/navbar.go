package pages

import (
	"fmt"

	"github.com/hrmqa/orangehrm-selenium/locator"
)

// Module is an application module reachable from the side menu.
type Module int

// Modules in side menu order.
const (
	Admin Module = iota
	PIM
	Leave
	Time
	Recruitment
	MyInfo
	Performance
	Dashboard
	Directory
	Maintenance
	Claim
	Buzz
)

var moduleInfo = [...]struct {
	label string
	path  string
}{
	Admin:       {"Admin", "/web/index.php/admin/viewAdminModule"},
	PIM:         {"PIM", "/web/index.php/pim/viewPimModule"},
	Leave:       {"Leave", "/web/index.php/leave/viewLeaveModule"},
	Time:        {"Time", "/web/index.php/time/viewTimeModule"},
	Recruitment: {"Recruitment", "/web/index.php/recruitment/viewRecruitmentModule"},
	MyInfo:      {"My Info", "/web/index.php/pim/viewMyDetails"},
	Performance: {"Performance", "/web/index.php/performance/viewPerformanceModule"},
	Dashboard:   {"Dashboard", "/web/index.php/dashboard/index"},
	Directory:   {"Directory", "/web/index.php/directory/viewDirectory"},
	Maintenance: {"Maintenance", "/web/index.php/maintenance/viewMaintenanceModule"},
	Claim:       {"Claim", "/web/index.php/claim/viewClaimModule"},
	Buzz:        {"Buzz", "/web/index.php/buzz/viewBuzz"},
}

// Modules returns every module in side menu order.
func Modules() []Module {
	out := make([]Module, len(moduleInfo))
	for i := range moduleInfo {
		out[i] = Module(i)
	}
	return out
}

// Label returns the menu label of m.
func (m Module) Label() string {
	if m < 0 || int(m) >= len(moduleInfo) {
		return fmt.Sprintf("Module(%d)", int(m))
	}
	return moduleInfo[m].label
}

// Path returns the route the menu link of m points to.
func (m Module) Path() string {
	if m < 0 || int(m) >= len(moduleInfo) {
		return ""
	}
	return moduleInfo[m].path
}

func (m Module) String() string { return m.Label() }

func (m Module) link() locator.Locator {
	return locator.XPath(m.Label()+" link", fmt.Sprintf("//a[contains(@href,'%s')]", m.Path()))
}

var (
	brandLogo        = locator.CSS("brand logo", "div.oxd-brand-logo img[alt='client brand logo']")
	brandBanner      = locator.CSS("brand banner", "div.oxd-brand-banner img[alt='client brand banner']")
	brandLink        = locator.CSS("brand link", ".oxd-sidepanel-header .oxd-brand")
	closeSidepanel   = locator.CSS("side panel close button", ".oxd-sidepanel-header-close")
	mainMenuSearch   = locator.CSS("main menu search icon", "div.oxd-main-menu-search svg.oxd-menu-icon")
	mainMenuItems    = locator.CSS("main menu items", "a.oxd-main-menu-item").All()
	mainMenuNames    = locator.CSS("main menu item names", "a.oxd-main-menu-item span.oxd-main-menu-item--name").All()
	sidePanel        = locator.CSS("side panel", "aside.oxd-sidepanel")
	mainMenuSearchIn = locator.CSS("main menu search input", "div.oxd-main-menu-search input")
)

// NavBar is the side panel with the module menu.
type NavBar struct {
	*Binding
}

// NewNavBar returns a NavBar bound to b.
func NewNavBar(b *Binding) *NavBar {
	n := new(NavBar)
	n.Init(b)
	return n
}

// Init implements Page.
func (n *NavBar) Init(b *Binding) { n.Binding = b }

// ClickModule follows the menu link of m.
func (n *NavBar) ClickModule(m Module) error {
	return n.click(m.link())
}

// IsModuleDisplayed reports whether the menu link of m is shown.
func (n *NavBar) IsModuleDisplayed(m Module) (bool, error) {
	return n.displayed(m.link())
}

// ClickMenuItemByLabel clicks the first menu item whose label matches,
// ignoring case and surrounding blanks. A missing label follows the
// binding's LabelPolicy.
func (n *NavBar) ClickMenuItemByLabel(label string) error {
	return n.clickByLabel(mainMenuItems, label)
}

// MainMenuItemNames returns the menu labels in menu order.
func (n *NavBar) MainMenuItemNames() ([]string, error) {
	return n.texts(mainMenuNames)
}

// MainMenuItemLinks returns the menu link targets in menu order.
func (n *NavBar) MainMenuItemLinks() ([]string, error) {
	return n.attributes(mainMenuItems, "href")
}

// IsMainMenuSearchIconDisplayed reports whether the menu filter is shown.
func (n *NavBar) IsMainMenuSearchIconDisplayed() (bool, error) {
	return n.displayed(mainMenuSearch)
}

// ClickBrandLink clicks the brand image, which opens the vendor site in a
// new window.
func (n *NavBar) ClickBrandLink() error {
	return n.click(brandLink)
}

// IsBrandBannerDisplayed reports whether the wide brand banner is shown.
func (n *NavBar) IsBrandBannerDisplayed() (bool, error) {
	return n.displayed(brandBanner)
}

// IsBrandLogoDisplayed reports whether the small logo is shown. The logo
// replaces the banner when the side panel is collapsed.
func (n *NavBar) IsBrandLogoDisplayed() (bool, error) {
	return n.displayed(brandLogo)
}

// IsCloseButtonDisplayed reports whether the side panel toggle is shown.
func (n *NavBar) IsCloseButtonDisplayed() (bool, error) {
	return n.displayed(closeSidepanel)
}

// ClickCloseSidepanel collapses or expands the side panel.
func (n *NavBar) ClickCloseSidepanel() error {
	return n.click(closeSidepanel)
}

// IsSidePanelPresent reports whether the side panel is shown.
func (n *NavBar) IsSidePanelPresent() (bool, error) {
	return n.displayed(sidePanel)
}

package pages

import (
	"fmt"

	"github.com/hrmqa/orangehrm-selenium/locator"
)

var (
	hamburgerMenu     = locator.CSS("hamburger menu", ".oxd-topbar-header-hamburger")
	breadcrumbTitle   = locator.CSS("breadcrumb title", ".oxd-topbar-header-breadcrumb-module")
	userArea          = locator.CSS("user area", ".oxd-topbar-header-userarea")
	userDropdownTab   = locator.CSS("user dropdown tab", ".oxd-userdropdown-tab")
	userProfileImage  = locator.CSS("user profile image", ".oxd-userdropdown-img")
	userName          = locator.CSS("user name", ".oxd-userdropdown-name")
	userDropdownMenu  = locator.CSS("user dropdown menu", ".oxd-dropdown-menu")
	userDropdownItems = locator.CSS("user dropdown menu items", ".oxd-dropdown-menu li").All()
	userDropdownLinks = locator.XPath("user dropdown options", "//ul[contains(@class,'oxd-dropdown-menu')]/li/a[@role='menuitem']").All()
)

func userDropdownOption(label string) locator.Locator {
	return locator.XPath(label+" option", fmt.Sprintf("//a[@role='menuitem' and normalize-space()='%s']", label))
}

// Header is the top bar shown on every page after sign-in.
type Header struct {
	*Binding
}

// NewHeader returns a Header bound to b.
func NewHeader(b *Binding) *Header {
	h := new(Header)
	h.Init(b)
	return h
}

// Init implements Page.
func (h *Header) Init(b *Binding) { h.Binding = b }

// ClickHamburgerMenu toggles the side panel.
func (h *Header) ClickHamburgerMenu() error {
	return h.click(hamburgerMenu)
}

// BreadcrumbTitle returns the title of the current module.
func (h *Header) BreadcrumbTitle() (string, error) {
	return h.text(breadcrumbTitle)
}

// UserName returns the name of the signed-in user.
func (h *Header) UserName() (string, error) {
	return h.text(userName)
}

// UserProfileImageSrc returns the source URL of the profile picture.
func (h *Header) UserProfileImageSrc() (string, error) {
	return h.attribute(userProfileImage, "src")
}

// IsUserAreaDisplayed reports whether the user tab area is shown.
func (h *Header) IsUserAreaDisplayed() (bool, error) {
	return h.displayed(userArea)
}

// OpenUserDropdown clicks the user tab. Clicking again closes the menu.
func (h *Header) OpenUserDropdown() error {
	return h.click(userDropdownTab)
}

// IsUserDropdownMenuDisplayed reports whether the user menu is open.
func (h *Header) IsUserDropdownMenuDisplayed() (bool, error) {
	return h.displayed(userDropdownMenu)
}

// UserDropdownMenuItems returns the item labels in menu order. Labels of a
// closed menu are not rendered and come back empty.
func (h *Header) UserDropdownMenuItems() ([]string, error) {
	return h.texts(userDropdownItems)
}

// UserDropdownOptionLabels returns the labels of the clickable options
// (About, Support, Change Password, Logout) in menu order.
func (h *Header) UserDropdownOptionLabels() ([]string, error) {
	return h.texts(userDropdownLinks)
}

// ClickAbout opens the About dialog. The dropdown must be open.
func (h *Header) ClickAbout() error { return h.click(userDropdownOption("About")) }

// ClickSupport opens the Support page.
func (h *Header) ClickSupport() error { return h.click(userDropdownOption("Support")) }

// ClickChangePassword opens the password update form.
func (h *Header) ClickChangePassword() error { return h.click(userDropdownOption("Change Password")) }

// ClickLogout signs out. The dropdown must be open.
func (h *Header) ClickLogout() error { return h.click(userDropdownOption("Logout")) }

// ClickUserDropdownMenuItem clicks the first dropdown item whose label
// matches, ignoring case and surrounding blanks. A missing label follows the
// binding's LabelPolicy.
func (h *Header) ClickUserDropdownMenuItem(label string) error {
	return h.clickByLabel(userDropdownItems, label)
}

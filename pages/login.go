package pages

import "github.com/hrmqa/orangehrm-selenium/locator"

var (
	usernameInput  = locator.Name("username input", "username")
	passwordInput  = locator.Name("password input", "password")
	loginButton    = locator.CSS("login button", "button[type='submit']")
	forgotPassword = locator.XPath("forgot password link", "//p[contains(@class, 'orangehrm-login-forgot-header')]")
	loginLogo      = locator.CSS("login logo", "div.orangehrm-login-logo img[alt='orangehrm-logo']")
	loginError     = locator.ClassName("login error", "orangehrm-login-error").All()
	loginErrorText = locator.XPath("login error text", "//div[contains(@class, 'orangehrm-login-error')]//p")
	requiredError  = locator.XPath("required field message", "//span[contains(@class, 'oxd-input-field-error-message') and text()='Required']").All()
)

// LoginPage is the sign-in screen.
type LoginPage struct {
	*Binding
}

// NewLoginPage returns a LoginPage bound to b.
func NewLoginPage(b *Binding) *LoginPage {
	p := new(LoginPage)
	p.Init(b)
	return p
}

// Init implements Page.
func (p *LoginPage) Init(b *Binding) { p.Binding = b }

// EnterUsername replaces the content of the username field. The text is
// sent as is; blank and whitespace-only values are allowed.
func (p *LoginPage) EnterUsername(username string) error {
	return p.typeText(usernameInput, username)
}

// EnterPassword replaces the content of the password field.
func (p *LoginPage) EnterPassword(password string) error {
	return p.typeText(passwordInput, password)
}

// ClickLogin submits the form.
func (p *LoginPage) ClickLogin() error {
	return p.click(loginButton)
}

// Login fills in both fields and submits the form.
func (p *LoginPage) Login(username, password string) error {
	if err := p.EnterUsername(username); err != nil {
		return err
	}
	if err := p.EnterPassword(password); err != nil {
		return err
	}
	return p.ClickLogin()
}

// ClickForgotPassword follows the "Forgot your password?" link.
func (p *LoginPage) ClickForgotPassword() error {
	return p.click(forgotPassword)
}

// IsLogoDisplayed reports whether the OrangeHRM logo is shown. It fails when
// the login screen is not loaded.
func (p *LoginPage) IsLogoDisplayed() (bool, error) {
	return p.displayed(loginLogo)
}

// IsInvalidCredentialsErrorDisplayed reports whether the "Invalid
// credentials" alert is shown. The alert only exists after a rejected
// attempt, so its absence is false.
func (p *LoginPage) IsInvalidCredentialsErrorDisplayed() (bool, error) {
	return p.anyDisplayed(loginError)
}

// InvalidCredentialsMessage returns the text of the alert.
func (p *LoginPage) InvalidCredentialsMessage() (string, error) {
	return p.text(loginErrorText)
}

// IsRequiredFieldErrorDisplayed reports whether any field shows the
// "Required" message.
func (p *LoginPage) IsRequiredFieldErrorDisplayed() (bool, error) {
	return p.anyDisplayed(requiredError)
}

// RequiredFieldErrorCount returns how many fields show the "Required"
// message.
func (p *LoginPage) RequiredFieldErrorCount() (int, error) {
	return p.count(requiredError)
}

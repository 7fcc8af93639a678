// Package demoapp serves a small imitation of the OrangeHRM web UI: the
// login screen, the dashboard and one page per side-menu module. The markup
// reuses the class names and texts of the real application so the page
// objects can be exercised without a live instance.
package demoapp

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

//go:embed templates/*.html
var templateFS embed.FS

// Base is the path prefix of every application route.
const Base = "/web/index.php"

// Routes used by the application.
const (
	LoginPath          = Base + "/auth/login"
	ValidatePath       = Base + "/auth/validate"
	LogoutPath         = Base + "/auth/logout"
	ResetPasswordPath  = Base + "/auth/requestPasswordResetCode"
	DashboardPath      = Base + "/dashboard/index"
	ChangePasswordPath = Base + "/pim/updatePassword"
)

const sessionCookie = "orangehrm"

// MenuEntry is one side-menu module.
type MenuEntry struct {
	Label string
	Path  string
}

// Menu lists the side-menu modules in display order.
var Menu = []MenuEntry{
	{"Admin", Base + "/admin/viewAdminModule"},
	{"PIM", Base + "/pim/viewPimModule"},
	{"Leave", Base + "/leave/viewLeaveModule"},
	{"Time", Base + "/time/viewTimeModule"},
	{"Recruitment", Base + "/recruitment/viewRecruitmentModule"},
	{"My Info", Base + "/pim/viewMyDetails"},
	{"Performance", Base + "/performance/viewPerformanceModule"},
	{"Dashboard", DashboardPath},
	{"Directory", Base + "/directory/viewDirectory"},
	{"Maintenance", Base + "/maintenance/viewMaintenanceModule"},
	{"Claim", Base + "/claim/viewClaimModule"},
	{"Buzz", Base + "/buzz/viewBuzz"},
}

// Post is a Buzz post shown on the dashboard.
type Post struct {
	Author string
	Body   string
}

// App is the HTTP handler. The exported fields may be changed before the
// first request.
type App struct {
	// Users maps user names to passwords.
	Users map[string]string
	// DisplayName is shown in the user dropdown.
	DisplayName string
	Posts       []Post
	OnLeave     []string
	SubUnits    []string
	Locations   []string
	Footer      []string

	once      sync.Once
	templates map[string]*template.Template
	mu        sync.Mutex
	sessions  map[string]string
	mux       *http.ServeMux
}

// New returns an application seeded with the data of the public OrangeHRM
// demo instance.
func New() *App {
	return &App{
		Users:       map[string]string{"Admin": "admin123"},
		DisplayName: "Paul Collings",
		Posts: []Post{
			{Author: "Peter Mac Anderson", Body: "Live SIMPLY, Dream BIG, Be GREATFULL, Give LOVE, Laugh LOT"},
			{Author: "Rebecca Harmony", Body: "World Championship 2026 tickets are up for grabs"},
		},
		SubUnits:  []string{"Engineering", "Human Resources", "Administration", "Client Services", "Unassigned"},
		Locations: []string{"Texas R&D", "New York Sales Office", "Unassigned"},
		Footer: []string{
			"OrangeHRM OS 5.7",
			"© 2005 - 2026 OrangeHRM, Inc. All rights reserved.",
		},
	}
}

func (a *App) init() {
	a.templates = make(map[string]*template.Template)
	for _, page := range []string{"dashboard.html", "module.html"} {
		a.templates[page] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	for _, page := range []string{"login.html", "reset.html"} {
		a.templates[page] = template.Must(template.ParseFS(templateFS, "templates/"+page))
	}
	a.sessions = make(map[string]string)

	a.mux = http.NewServeMux()
	a.mux.HandleFunc(LoginPath, a.login)
	a.mux.HandleFunc(ValidatePath, a.validate)
	a.mux.HandleFunc(LogoutPath, a.logout)
	a.mux.HandleFunc(ResetPasswordPath, a.reset)
	a.mux.HandleFunc(DashboardPath, a.authenticated(a.dashboard))
	a.mux.HandleFunc(ChangePasswordPath, a.authenticated(a.module("PIM")))
	for _, m := range Menu {
		if m.Path == DashboardPath {
			continue
		}
		a.mux.HandleFunc(m.Path, a.authenticated(a.module(m.Label)))
	}
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != Base && r.URL.Path != Base+"/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, LoginPath, http.StatusFound)
	})
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.init)
	a.mux.ServeHTTP(w, r)
}

type loginData struct {
	Token              string
	InvalidCredentials bool
	UsernameRequired   bool
	PasswordRequired   bool
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if a.user(r) != "" {
		http.Redirect(w, r, DashboardPath, http.StatusFound)
		return
	}
	a.render(w, "login.html", loginData{Token: uuid.NewString()})
}

func (a *App) validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username, password := r.PostFormValue("username"), r.PostFormValue("password")
	data := loginData{
		Token:            uuid.NewString(),
		UsernameRequired: strings.TrimSpace(username) == "",
		PasswordRequired: strings.TrimSpace(password) == "",
	}
	if data.UsernameRequired || data.PasswordRequired {
		a.render(w, "login.html", data)
		return
	}
	if want, ok := a.Users[username]; !ok || want != password {
		data.InvalidCredentials = true
		a.render(w, "login.html", data)
		return
	}

	token := uuid.NewString()
	a.mu.Lock()
	a.sessions[token] = username
	a.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		a.mu.Lock()
		delete(a.sessions, c.Value)
		a.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

func (a *App) reset(w http.ResponseWriter, r *http.Request) {
	a.render(w, "reset.html", nil)
}

func (a *App) user(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions[c.Value]
}

func (a *App) authenticated(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.user(r) == "" {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		h(w, r)
	}
}

type menuItem struct {
	MenuEntry
	Active bool
}

type layoutData struct {
	Title       string
	DisplayName string
	Menu        []menuItem
	Footer      []string

	Posts     []Post
	OnLeave   []string
	SubUnits  []string
	Locations []string
}

func (a *App) layout(title string) layoutData {
	d := layoutData{Title: title, DisplayName: a.DisplayName, Footer: a.Footer}
	for _, m := range Menu {
		d.Menu = append(d.Menu, menuItem{MenuEntry: m, Active: m.Label == title})
	}
	return d
}

func (a *App) dashboard(w http.ResponseWriter, r *http.Request) {
	d := a.layout("Dashboard")
	d.Posts = a.Posts
	d.OnLeave = a.OnLeave
	d.SubUnits = a.SubUnits
	d.Locations = a.Locations
	a.render(w, "dashboard.html", d)
}

func (a *App) module(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.render(w, "module.html", a.layout(title))
	}
}

func (a *App) render(w http.ResponseWriter, page string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	t := a.templates[page]
	name := "page"
	if t.Lookup("layout") != nil {
		name = "layout"
	}
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

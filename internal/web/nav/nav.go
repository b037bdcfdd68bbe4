// Package nav assembles the navbar and sidebar menus for a page.
package nav

import (
	"github.com/aussiebroadwan/tenantry/internal/web/authz"
	"github.com/aussiebroadwan/tenantry/internal/web/domain"
)

// Item is one menu entry. Key identifies the entry for current-item markers.
type Item struct {
	Key   string
	Title string
	URL   string
	Icon  string
}

// Menu is ordered; templates render it as given.
type Menu []Item

type Menus struct {
	Left    Menu
	Right   Menu
	Sidebar Menu
}

// Input is everything Build looks at.
type Input struct {
	SignedIn    bool
	CurrentUser *domain.User
	Account     *domain.Account
	Can         func(authz.Action, any) bool
}

// Build derives the menus for one request.
func Build(in Input) Menus {
	m := Menus{Left: Menu{}}

	if in.SignedIn && in.CurrentUser != nil {
		m.Right = Menu{{
			Key:   "welcome",
			Title: "Welcome " + in.CurrentUser.String(),
			URL:   UserPath(in.CurrentUser.ID),
			Icon:  "user",
		}}
	} else {
		m.Right = Menu{
			{Key: "home", Title: "Home", URL: "/"},
			{Key: "plans", Title: "Sign Up & Pricing", URL: "/pricing"},
			{Key: "signin", Title: "Log In", URL: SignInPath},
		}
	}

	m.Sidebar = Menu{}
	if in.Account == nil {
		return m
	}
	m.Sidebar = append(m.Sidebar, Item{
		Key:   "dashboard",
		Title: "Dashboard",
		URL:   TenantPath(in.Account.Path, "/"),
		Icon:  "tachometer",
	})
	if in.Can != nil && in.Can(authz.ActionIndex, authz.KindSettingsDashboard) {
		m.Sidebar = append(m.Sidebar, Item{
			Key:   "settings",
			Title: "Settings",
			URL:   TenantPath(in.Account.Path, "/settings"),
			Icon:  "cogs",
		})
	}
	return m
}

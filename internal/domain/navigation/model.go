// Package navigation maps a role to the menu shown around protected pages.
package navigation

import "gymportal/internal/domain/account"

// NavItem is a single menu entry.
type NavItem struct {
	Label string
	Path  string
	Icon  string
}

// menu is the fixed configuration for one role.
type menu struct {
	Home  string
	Items []NavItem
}

var publicMenu = menu{
	Home: "/",
	Items: []NavItem{
		{Label: "Home", Path: "/", Icon: "home"},
		{Label: "Login", Path: "/login", Icon: "log-in"},
	},
}

// menus holds one entry per account.Roles value. TestFor_CoversEveryRole
// fails when a role is added without a menu.
var menus = map[account.Role]menu{
	account.RoleAdmin: {
		Home: "/admin",
		Items: []NavItem{
			{Label: "Dashboard", Path: "/admin", Icon: "layout-dashboard"},
			{Label: "Members", Path: "/admin/members", Icon: "users"},
			{Label: "Trainers", Path: "/admin/trainers", Icon: "dumbbell"},
			{Label: "Reports", Path: "/admin/reports", Icon: "bar-chart"},
			{Label: "Settings", Path: "/admin/settings", Icon: "settings"},
		},
	},
	account.RoleTrainer: {
		Home: "/trainer",
		Items: []NavItem{
			{Label: "Dashboard", Path: "/trainer", Icon: "layout-dashboard"},
			{Label: "Members", Path: "/trainer/members", Icon: "users"},
			{Label: "Schedule", Path: "/trainer/schedule", Icon: "calendar"},
			{Label: "Progress", Path: "/trainer/progress", Icon: "trending-up"},
			{Label: "Settings", Path: "/trainer/settings", Icon: "settings"},
		},
	},
	account.RoleMember: {
		Home: "/member",
		Items: []NavItem{
			{Label: "Dashboard", Path: "/member", Icon: "layout-dashboard"},
			{Label: "Progress", Path: "/member/progress", Icon: "trending-up"},
			{Label: "Membership", Path: "/member/membership", Icon: "credit-card"},
			{Label: "Settings", Path: "/member/settings", Icon: "settings"},
		},
	},
}

func menuFor(role account.Role) menu {
	if role == account.RoleNone {
		return publicMenu
	}
	if m, ok := menus[role]; ok {
		return m
	}
	// Unknown roles get the least privileged portal, never an empty menu.
	return menus[account.RoleMember]
}

// For returns the ordered navigation entries for role.
// POST: result is non-empty for every input
func For(role account.Role) []NavItem {
	items := menuFor(role).Items
	out := make([]NavItem, len(items))
	copy(out, items)
	return out
}

// HomePath returns where a role lands after login.
func HomePath(role account.Role) string {
	return menuFor(role).Home
}

// IsActive reports whether item is the current page. Exact match only.
func IsActive(item NavItem, currentPath string) bool {
	return item.Path == currentPath
}

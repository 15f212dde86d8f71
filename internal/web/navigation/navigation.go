// Package navigation builds the page title, breadcrumbs and sidebar menu of the admin pages.
package navigation

import "github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// MenuItem is an entry of the sidebar.
type MenuItem struct {
	Section    string
	Page       string
	Title      string
	URL        string
	Permission string
}

// menu lists the sidebar entries in display order.
var menu = []MenuItem{ //nolint:gochecknoglobals
	{Section: "settings", Page: "content", Title: "Settings", URL: "/settings/content", Permission: auth.PermSettingsContent},
	{Section: "admin", Page: "settings-keys", Title: "Settings keys", URL: "/admin/settings/keys", Permission: auth.PermAdminSettingsKeys},
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// Menu returns the sidebar entries the user may open. A nil check grants nothing.
func Menu(hasPermission func(string) bool) []MenuItem {
	out := make([]MenuItem, 0, len(menu))
	if hasPermission == nil {
		return out
	}

	for _, item := range menu {
		if hasPermission(item.Permission) {
			out = append(out, item)
		}
	}

	return out
}

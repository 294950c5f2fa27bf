package usermenu

import "strings"

// Default item keys.
const (
	KeyDocumentation = "documentation"
	KeySupport       = "support"
	KeyShortcuts     = "shortcuts"
	KeySeparator     = "separator"
	KeyProfile       = "profile"
	KeyOdooAccount   = "odoo_account"
	KeyLogOut        = "log_out"
)

// DefaultExcluded lists the entries removed from the stock menu.
var DefaultExcluded = []string{KeyDocumentation, KeySupport, KeyShortcuts, KeyOdooAccount}

// DefaultItems returns the stock user menu. backendURL is used for entries
// that open the ERP backend directly.
func DefaultItems(backendURL string) []Item {
	backendURL = strings.TrimRight(backendURL, "/")
	return []Item{
		{Key: KeyDocumentation, Label: "Documentation", Href: "https://www.odoo.com/documentation/15.0", Sequence: 10, External: true},
		{Key: KeySupport, Label: "Support", Href: "https://www.odoo.com/buy", Sequence: 20, External: true},
		{Key: KeyShortcuts, Label: "Shortcuts", Href: "#shortcuts", Sequence: 30},
		{Key: KeySeparator, Sequence: 40, Kind: KindSeparator},
		{Key: KeyProfile, Label: "Preferences", Href: backendURL + "/web#action=base.action_res_users_my", Sequence: 50, External: true},
		{Key: KeyOdooAccount, Label: "My Odoo.com account", Href: "https://accounts.odoo.com/account", Sequence: 60, External: true},
		{Key: KeyLogOut, Label: "Log out", Href: "/auth/logout", Sequence: 70, Kind: KindLogout},
	}
}

package nav

import (
	"net/url"
	"strings"
)

// SignInPath is where unauthenticated users are sent.
const SignInPath = "/users/sign_in"

func UserPath(id string) string { return "/users/" + url.PathEscape(id) }

// TenantPath prefixes suffix with the tenant's /t/{path} so generated links
// keep the account they were rendered under. "/" gives the dashboard.
func TenantPath(path, suffix string) string {
	p := "/t/" + url.PathEscape(path)
	if suffix == "" || suffix == "/" {
		return p + "/"
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return p + suffix
}

package config

import "strings"

// AdminAllowList is the set of principal usernames granted admin privilege.
// Entries are normalized to lower-case once, at parse time; membership checks
// normalize the candidate the same way. Static for the process lifetime.
type AdminAllowList map[string]struct{}

// ParseAdminAllowList builds the set from a comma-separated list of UPNs.
// Blank entries are dropped.
func ParseAdminAllowList(csv string) AdminAllowList {
	allow := AdminAllowList{}
	for _, upn := range strings.Split(csv, ",") {
		upn = strings.ToLower(strings.TrimSpace(upn))
		if upn == "" {
			continue
		}
		allow[upn] = struct{}{}
	}
	return allow
}

// Contains reports whether username is on the allow-list. An empty username
// is never an admin.
func (a AdminAllowList) Contains(username string) bool {
	if username == "" {
		return false
	}
	_, ok := a[strings.ToLower(username)]
	return ok
}

func (a AdminAllowList) String() string {
	upns := make([]string, 0, len(a))
	for upn := range a {
		upns = append(upns, upn)
	}
	return strings.Join(upns, ", ")
}

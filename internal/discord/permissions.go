package discord

import "strconv"

// Permission bits relevant to webhook provisioning. The full bitmask is a
// 64-bit integer; the high bits matter, so it must never pass through a
// float or 32-bit representation.
const (
	PermissionAdministrator  uint64 = 1 << 3
	PermissionManageWebhooks uint64 = 1 << 29
)

// ParsePermissions parses the decimal-string bitmask Discord serves. A
// malformed or empty value returns ok=false; callers treat that as no
// permission rather than erroring.
func ParsePermissions(raw string) (uint64, bool) {
	if raw == "" {
		return 0, false
	}
	perms, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return perms, true
}

// CanManageWebhooks reports whether the bitmask allows managing webhooks in
// a guild. Administrator implies every finer-grained capability.
func CanManageWebhooks(perms uint64) bool {
	return perms&PermissionAdministrator != 0 || perms&PermissionManageWebhooks != 0
}

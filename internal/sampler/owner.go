package sampler

import "github.com/Dicklesworthstone/procmon/internal/identity"

// ResolveOwner returns the account name for uid, or "" when the directory
// has no entry. A miss is not an error.
func ResolveOwner(dir identity.Directory, uid uint32) string {
	if dir == nil {
		return ""
	}
	name, err := dir.LookupName(uid)
	if err != nil {
		return ""
	}
	return name
}

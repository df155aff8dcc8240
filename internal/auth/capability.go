package auth

// AdminCapability is the capability name checked for global administration.
const AdminCapability = "Admin"

// PrivilegedRole is the AdminCapability value that grants global admin.
const PrivilegedRole = "System Administrator"

// Capability is a single {name, value} authorization tag on a user.
type Capability struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IsAdmin reports whether any capability grants the privileged admin role.
func IsAdmin(caps []Capability) bool {
	for _, c := range caps {
		if c.Name == AdminCapability && c.Value == PrivilegedRole {
			return true
		}
	}
	return false
}

// HasCapability reports whether caps grants the named capability. Global
// admins hold every capability.
func HasCapability(caps []Capability, name string) bool {
	if IsAdmin(caps) {
		return true
	}
	for _, c := range caps {
		if c.Name == name {
			return true
		}
	}
	return false
}

package domain

// Role constants match the seeded group names.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// ValidRoles returns the set of groups a user can belong to.
func ValidRoles() []string {
	return []string{RoleAdmin, RoleCustomer}
}

// IsValidRole checks whether role names a seeded group.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

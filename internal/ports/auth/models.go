package auth

// Roles soportados por el sistema.
const (
	RoleOwner        = "owner"
	RoleVeterinarian = "veterinarian"
	RoleAgent        = "agent"
	RoleAdmin        = "admin"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// IsStaff indica si el rol puede operar sobre pólizas/claims de otros usuarios.
func (c Claims) IsStaff() bool {
	return c.Role == RoleAgent || c.Role == RoleAdmin
}

// ValidRole valida un rol contra el set soportado.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleVeterinarian, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

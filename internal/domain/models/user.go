package models

// Role is the access level of a back-office user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleMarketing  Role = "marketing"
	RoleFarmer     Role = "farmer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleMarketing, RoleFarmer:
		return true
	}
	return false
}

// User is an operator account. PasswordHash never leaves the process.
type User struct {
	ID            string      `bson:"_id" json:"id"`
	Username      string      `bson:"username" json:"username"`
	Name          string      `bson:"name" json:"name"`
	Email         string      `bson:"email" json:"email"`
	Phone         string      `bson:"phone" json:"phone"`
	Role          Role        `bson:"role" json:"role"`
	AssignedFarms []string    `bson:"assigned_farms,omitempty" json:"assignedFarms,omitempty"`
	PasswordHash  string      `bson:"password_hash" json:"-"`
	LastActive    string      `bson:"last_active" json:"lastActive"`
	Status        PartyStatus `bson:"status" json:"status"`
}

package domain

// Role is a user's role in the directory service
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	return r == RolePatient || r == RoleDoctor || r == RoleAdmin
}

// User is a directory entry resolved by id
type User struct {
	ID   int64
	Role Role
}

// IsAdmin returns true for administrators
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsDoctor returns true for doctors
func (u *User) IsDoctor() bool {
	return u != nil && u.Role == RoleDoctor
}

// IsPatient returns true for patients
func (u *User) IsPatient() bool {
	return u != nil && u.Role == RolePatient
}

package session

import "github.com/edudash/edudash/internal/access"

// SeedPrincipal returns the fixed mock identity for role. Roles outside the
// login set yield the anonymous principal.
func SeedPrincipal(role access.Role) access.Principal {
	switch role {
	case access.RoleAdmin:
		return access.Principal{
			ID:                "admin-1",
			Role:              access.RoleAdmin,
			DisplayName:       "Amina Okafor",
			Email:             "admin@school.edu",
			ClassOrDepartment: "Administration",
		}
	case access.RoleTeacher:
		return access.Principal{
			ID:                "teacher-1",
			Role:              access.RoleTeacher,
			DisplayName:       "Daniel Mwangi",
			Email:             "teacher@school.edu",
			ClassOrDepartment: "Mathematics",
		}
	case access.RoleStudent:
		return access.Principal{
			ID:                "student-1",
			Role:              access.RoleStudent,
			DisplayName:       "Grace Wanjiru",
			Email:             "student@school.edu",
			ClassOrDepartment: "Grade 10A",
		}
	default:
		return access.Anonymous()
	}
}

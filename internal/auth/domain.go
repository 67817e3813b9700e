package auth

import "github.com/edudash/edudash/internal/access"

// Profile is what the dashboard shell renders for the current session.
type Profile struct {
	Principal    access.Principal    `json:"principal"`
	RoleLabel    string              `json:"role_label"`
	Scopes       []string            `json:"scopes"`
	Capabilities map[string][]string `json:"capabilities"`
	CSRFToken    string              `json:"csrf_token,omitempty"`
}

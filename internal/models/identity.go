package models

// Identity is a user resolved from a bearer credential by the identity provider.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// IsZero reports whether the connection carried no verified identity.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

package dto

// CreateUserRequest provisions an account from the admin surface.
type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// SetActiveRequest toggles an account.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// UpdateUserRequest is the full admin edit of an account.
type UpdateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Active     bool   `json:"active"`
}

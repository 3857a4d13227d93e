package user

// User is the owning customer's display identity, mirrored from the external
// identity store for admin-facing order listings.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

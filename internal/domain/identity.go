package domain

// Identity is the public user record returned by the auth endpoints.
type Identity struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

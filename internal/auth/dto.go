package auth

// Credentials are the email and password sent to register or log in.
type Credentials struct {
	Email    string
	Password string
}

// Result is returned by register and login.
type Result struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

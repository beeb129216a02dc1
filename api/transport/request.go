package transport

// TokenRequest exchanges account credentials for an API token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TaskRequest struct {
	Title string `json:"title"`
}

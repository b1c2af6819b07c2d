package validators

// TokenField lets JSON bodies carry the auth token, which the auth
// middleware reads before the controller decodes the payload. Embed it in
// request structs for protected JSON routes.
type TokenField struct {
	Token *string `json:"token,omitempty"`
}

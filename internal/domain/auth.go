package domain

// TokenVerifier verifies a bearer token minted by the external bot-check and
// session issuance flow, returning its subject. This service never issues
// tokens itself.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

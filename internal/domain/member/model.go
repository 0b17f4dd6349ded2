package member

// Principal is the authenticated caller as reported by the account service's
// token introspection.
type Principal struct {
	UserID   string
	Nickname string
}

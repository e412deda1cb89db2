package middleware

// Context keys set by AuthJWT.
const (
	CtxUser       = "user"
	CtxUserPublic = "userPublic"
)

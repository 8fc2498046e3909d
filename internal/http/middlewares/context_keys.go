package middlewares

const (
	CtxRequestID  = "request_id"
	ctxPrincipal  = "auth.principal"
	ctxAuthMethod = "auth.method"
	ctxResolveErr = "auth.resolve_error"
)

const (
	AuthMethodSession = "session"
	AuthMethodBearer  = "bearer"
)

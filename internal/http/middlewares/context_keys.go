package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	ctxCallerKey = "auth.caller"
)

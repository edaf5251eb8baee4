package constants

type ContextKey string

const (
	LoggerKey    ContextKey = "logger"
	ParamsKey    ContextKey = "params"
	RequestIDKey ContextKey = "requestID"
)

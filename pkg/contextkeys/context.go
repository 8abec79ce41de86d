package contextkeys

type contextKey string

// Keys stored on the gin context. Values are set with c.Set(string(key), v).
const (
	DBContextKey    = contextKey("db")
	ActorContextKey = contextKey("actor")
	UserIDKey       = contextKey("userID")
	UserTypeKey     = contextKey("userType")
)

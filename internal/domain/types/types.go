package types

// StoreDriver selects the credential store backend.
type StoreDriver string

const (
	SQLiteStore   StoreDriver = "sqlite"
	PostgresStore StoreDriver = "postgres"
	MemoryStore   StoreDriver = "memory"
)

func (d StoreDriver) String() string {
	return string(d)
}

// Valid reports whether d names a known backend.
func (d StoreDriver) Valid() bool {
	switch d {
	case SQLiteStore, PostgresStore, MemoryStore:
		return true
	default:
		return false
	}
}

// TokenType is the kind label returned with an issued token.
type TokenType string

const BearerToken TokenType = "bearer"

func (t TokenType) String() string {
	return string(t)
}

// AuthEventType names an audit event.
type AuthEventType string

const (
	EventUserRegistered AuthEventType = "user.registered"
	EventLoginSucceeded AuthEventType = "user.login_succeeded"
	EventLoginFailed    AuthEventType = "user.login_failed"
)

func (e AuthEventType) String() string {
	return string(e)
}

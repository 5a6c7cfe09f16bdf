package config

type SessionConfig interface {
	GetSecretKey() string
	GetRedisHost() string
	GetRedisPort() string
	GetRedisPassword() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSecretKey returns the secret used to seal the client-side session cookie.
func (Session) GetSecretKey() string {
	return GetEnv("SECRET_KEY", "")
}

// GetRedisHost returns the Redis host. When empty, the in-process session
// store is used instead of Redis.
func (Session) GetRedisHost() string {
	return GetEnv("REDIS_HOST", "")
}

func (Session) GetRedisPort() string {
	return GetEnv("REDIS_PORT", "6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the key holding the user id for a signed-in session (JWT jti).
func (r *CacheKeyStruct) SessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// UserNotificationChannel returns the Redis PubSub channel carrying a user's zone notifications.
func (r *CacheKeyStruct) UserNotificationChannel(userID string) string {
	return fmt.Sprintf("user:%s:notifications", userID)
}

var CacheKey = NewCacheKeyStruct()

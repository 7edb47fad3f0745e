package database

import (
	"time"
)

// Connection definition sql setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// MinIOConnection definition minio
type MinIOConnection struct {
	Endpoint string
	User     string
	Password string
	UseSSL   bool

	RetryCount    int
	RetryInterval time.Duration
}

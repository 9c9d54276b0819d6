package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classroom-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "gv", Password: "pw", Name: "classroom", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=gv password=pw dbname=classroom sslmode=disable", dsn)
}

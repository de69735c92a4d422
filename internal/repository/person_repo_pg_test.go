package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewPersonRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewPersonRepository(pool)
	assert.NotNil(t, repo)
}

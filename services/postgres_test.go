package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyError(t *testing.T) {
	ds := &PostgresService{}

	assert.False(t, ds.IsDuplicateKeyError(nil))
	assert.True(t, ds.IsDuplicateKeyError(gorm.ErrDuplicatedKey))
	assert.True(t, ds.IsDuplicateKeyError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))

	// The driver's unique-violation text, as surfaced through a savepoint
	// rollback. Nested transactions return the inner error unchanged, so
	// this is exactly what the mint-retry loop sees on a collision.
	pgDup := errors.New(`ERROR: duplicate key value violates unique constraint "registration_indices_pkey" (SQLSTATE 23505)`)
	assert.True(t, ds.IsDuplicateKeyError(pgDup))

	// An aborted transaction is not a collision; the retry loop must treat
	// it as a hard failure rather than regenerate against a dead tx.
	aborted := errors.New("ERROR: current transaction is aborted, commands ignored until end of transaction block (SQLSTATE 25P02)")
	assert.False(t, ds.IsDuplicateKeyError(aborted))

	assert.False(t, ds.IsDuplicateKeyError(errors.New("connection reset")))
}

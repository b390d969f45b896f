package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator(t *testing.T) {
	db, rd := openTest(t)
	ctx := context.Background()

	mg, err := NewMigrator(ctx, db, "main")
	require.NoError(t, err)
	require.NoError(t, mg.Migrate())
	// running again is a no-op
	require.NoError(t, mg.Migrate())

	r0, err := rd.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "0", r0.Name)

	require.NoError(t, mg.RollbackLast())
	_, err = rd.Get(ctx, 0)
	assert.True(t, IsRegionalNotFound(err))

	require.NoError(t, mg.RollbackLast())
	engine, err := db.Engine("main")
	require.NoError(t, err)
	assert.False(t, engine.Migrator().HasTable("regional"))
	assert.False(t, engine.Migrator().HasTable("vo"))
}

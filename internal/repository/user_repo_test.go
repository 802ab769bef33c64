package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/db"
)

func TestUserRepository_SaveAndFind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := &db.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", Role: "ADMIN", Phone: "+351900000000"}
	require.NoError(t, f.users.Save(ctx, u))
	require.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	byEmail, err := f.users.FindByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "ADMIN", byEmail.Role)
	assert.Equal(t, "+351900000000", byEmail.Phone)

	byID, err := f.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Ana", byID.Name)
}

func TestUserRepository_Missing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.users.FindByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")

	err := f.users.Save(context.Background(), &db.User{Name: "Other", Email: "ana@example.com", PasswordHash: "x", Role: "USER"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

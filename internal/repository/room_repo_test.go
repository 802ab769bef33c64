package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservaja/internal/db"
)

func TestRoomRepository_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	vega := f.room(t, "Vega")
	f.room(t, "Andromeda")

	rooms, err := f.rooms.List(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "Andromeda", rooms[0].Name)

	vega.Capacity = 20
	vega.Description = "Large room"
	found, err := f.rooms.Update(ctx, vega)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := f.rooms.FindByID(ctx, vega.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 20, got.Capacity)
	assert.Equal(t, "Large room", got.Description)

	found, err = f.rooms.Update(ctx, &db.Room{ID: 999, Name: "Ghost", Capacity: 1})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRoomRepository_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.room(t, "Vega")

	err := f.rooms.Create(context.Background(), &db.Room{Name: "Vega", Capacity: 2})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRoomRepository_DeleteCascadesReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, r := f.user(t, "a@example.com"), f.room(t, "Vega")
	res := reservation(u.ID, r.ID, base, base.Add(time.Hour))
	require.NoError(t, f.reservations.CreateIfNoOverlap(ctx, res))

	found, err := f.rooms.Delete(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, found)

	got, err := f.reservations.FindByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	room, err := f.rooms.FindByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, room)
}

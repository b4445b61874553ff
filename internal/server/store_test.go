package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/types"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	d := types.NewDraft()
	d.Skills = []string{"Go"}
	created, err := m.CreateResume(ctx, "u", types.SavedResume{Name: "A", Data: d})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.ID, created.Data.ID)
	assert.Equal(t, clock, created.CreatedAt)

	created.Data.Skills[0] = "mutated"
	got, err := m.GetResume(ctx, "u", created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, got.Data.Skills)

	clock = clock.Add(time.Hour)
	upd := *got
	upd.Name = "B"
	updated, err := m.UpdateResume(ctx, "u", upd)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock, updated.UpdatedAt)

	missing, err := m.UpdateResume(ctx, "other", upd)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := m.DeleteResume(ctx, "u", created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.DeleteResume(ctx, "u", created.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = m.GetResume(ctx, "u", created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	first, err := m.CreateResume(ctx, "u", types.SavedResume{Name: "first"})
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = m.CreateResume(ctx, "u", types.SavedResume{Name: "second"})
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = m.UpdateResume(ctx, "u", *first)
	require.NoError(t, err)

	list, err := m.ListResumes(ctx, "u")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)

	empty, err := m.ListResumes(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

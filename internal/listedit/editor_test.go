package listedit

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func (i item) EntryID() string { return i.ID }

func seqIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newItem(id string) item { return item{ID: id} }

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestAppend_GeneratesIDAtEnd(t *testing.T) {
	gen := seqIDs()
	var items []item

	items = Append(items, gen, newItem)
	items = Append(items, gen, newItem)

	assert.Equal(t, []string{"id-1", "id-2"}, ids(items))
	assert.Empty(t, items[1].Name)
}

func TestAppend_DefaultGeneratorUnique(t *testing.T) {
	var items []item
	for range 50 {
		items = Append(items, nil, newItem)
	}
	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
		seen[it.ID] = true
	}
}

func TestAppend_DoesNotMutateInput(t *testing.T) {
	gen := seqIDs()
	base := make([]item, 1, 4)
	base[0] = item{ID: "x"}

	a := Append(base, gen, newItem)
	b := Append(base, gen, newItem)

	assert.Equal(t, "id-1", a[1].ID)
	assert.Equal(t, "id-2", b[1].ID)
	assert.Len(t, base, 1)
}

func TestRemove_ShiftsWithoutRenumbering(t *testing.T) {
	items := []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, err := Remove(items, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(out))
	assert.Equal(t, []string{"a", "b", "c"}, ids(items))
}

func TestRemove_AppendThenRemoveLeavesEmpty(t *testing.T) {
	items := Append([]item{}, seqIDs(), newItem)

	out, err := Remove(items, 0)
	require.NoError(t, err)
	assert.Len(t, out, 0)
}

func TestRemove_OutOfRange(t *testing.T) {
	_, err := Remove([]item{{ID: "a"}}, 3)
	require.Error(t, err)

	var idxErr *IndexError
	assert.ErrorAs(t, err, &idxErr)
	assert.Equal(t, 3, idxErr.Index)
}

func TestMove(t *testing.T) {
	items := []item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"to end", 1, 3, []string{"a", "c", "d", "b"}},
		{"to start", 2, 0, []string{"c", "a", "b", "d"}},
		{"same index", 2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Move(items, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(out))
			assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items))
		})
	}
}

func TestMove_InverseRestoresOrder(t *testing.T) {
	items := []item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}

	for i := range items {
		for j := range items {
			moved, err := Move(items, i, j)
			require.NoError(t, err)
			back, err := Move(moved, j, i)
			require.NoError(t, err)
			assert.Equal(t, ids(items), ids(back), "move(%d,%d) then move(%d,%d)", i, j, j, i)
		}
	}
}

func TestMove_OutOfRange(t *testing.T) {
	_, err := Move([]item{{ID: "a"}}, 0, 1)
	assert.Error(t, err)
	_, err = Move([]item{{ID: "a"}}, -1, 0)
	assert.Error(t, err)
}

func TestResolveDrop(t *testing.T) {
	items := []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, moved, err := ResolveDrop(items, "a", "c")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "c", "a"}, ids(out))

	out, moved, err = ResolveDrop(items, "b", "b")
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, ids(items), ids(out))

	_, moved, err = ResolveDrop(items, "a", "zzz")
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestRandomOperations_StayCompactAndUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	gen := seqIDs()
	var items []item
	known := map[string]bool{}

	for step := 0; step < 2000; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(items) == 0:
			items = Append(items, gen, newItem)
			id := items[len(items)-1].ID
			require.False(t, known[id], "identifier reused: %s", id)
			known[id] = true
		case op == 1:
			before := ids(items)
			idx := rng.Intn(len(items))
			out, err := Remove(items, idx)
			require.NoError(t, err)
			want := append(append([]string{}, before[:idx]...), before[idx+1:]...)
			require.Equal(t, want, ids(out))
			items = out
		default:
			before := map[string]bool{}
			for _, it := range items {
				before[it.ID] = true
			}
			out, err := Move(items, rng.Intn(len(items)), rng.Intn(len(items)))
			require.NoError(t, err)
			require.Len(t, out, len(items))
			for _, it := range out {
				require.True(t, before[it.ID], "move introduced unknown id %s", it.ID)
			}
			items = out
		}

		seen := map[string]bool{}
		for i := 0; i < len(items); i++ {
			require.NotEmpty(t, items[i].ID)
			require.False(t, seen[items[i].ID])
			seen[items[i].ID] = true
		}
	}
}

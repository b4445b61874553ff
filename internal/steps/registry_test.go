package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Order(t *testing.T) {
	expected := []string{Personal, Experience, Education, Skills, Activities, Awards}

	require.Equal(t, len(expected), Count())
	for i, id := range expected {
		def, err := At(i)
		require.NoError(t, err)
		assert.Equal(t, id, def.ID)
		assert.Equal(t, i, IndexOf(id))
		assert.NotEmpty(t, def.Title)
	}
}

func TestRegistry_FieldOwnershipIsDisjoint(t *testing.T) {
	owners := map[string]string{}
	for _, def := range Registry {
		require.NotEmpty(t, def.Fields, "step %s owns no fields", def.ID)
		for _, f := range def.Fields {
			prev, taken := owners[f]
			assert.False(t, taken, "field %s owned by both %s and %s", f, prev, def.ID)
			owners[f] = def.ID
		}
	}
	assert.Equal(t, Personal, OwnerOf(FieldPersonalInfo))
	assert.Equal(t, Skills, OwnerOf(FieldSkills))
	assert.Empty(t, OwnerOf("template"))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("hobbies")
	require.Error(t, err)

	var stepErr *UnknownStepError
	assert.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "hobbies", stepErr.Step)

	_, err = At(Count())
	assert.Error(t, err)
	assert.Equal(t, -1, IndexOf("hobbies"))
}

package draft

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
	schemadocs "github.com/jonathan/cv-builder/schemas"
)

// DecodeError reports a stored snapshot that could not be turned back into a draft.
type DecodeError struct {
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("draft decode error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("draft decode error: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

var draftSchema = sync.OnceValues(func() (*schemas.Schema, error) {
	return schemas.Compile(schemadocs.Draft)
})

// Encode serializes a draft snapshot. Nil collections are written as empty arrays.
func Encode(d types.ResumeDraft) ([]byte, error) {
	data, err := json.Marshal(d.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	return data, nil
}

// Decode checks data against the draft schema and unmarshals it.
func Decode(data []byte) (types.ResumeDraft, error) {
	schema, err := draftSchema()
	if err != nil {
		return types.ResumeDraft{}, &DecodeError{Message: "schema unavailable", Cause: err}
	}
	if err := schema.Validate(data); err != nil {
		return types.ResumeDraft{}, &DecodeError{Message: "snapshot does not match schema", Cause: err}
	}

	var d types.ResumeDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return types.ResumeDraft{}, &DecodeError{Message: "invalid JSON", Cause: err}
	}
	return d.Normalize(), nil
}

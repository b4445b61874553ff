// Package schemas holds the JSON Schema documents shipped with the binary.
package schemas

import _ "embed"

// Draft is the schema every persisted draft snapshot must satisfy.
//
//go:embed draft.schema.json
var Draft string

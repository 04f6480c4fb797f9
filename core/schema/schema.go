// Package schema embeds the JSON Schemas for the persisted record formats.
package schema

import _ "embed"

//go:embed pointer_v1.schema.json
var PointerV1 []byte

//go:embed verdict_v1.schema.json
var VerdictV1 []byte

package data

import _ "embed"

// Fixtures holds the schedule templates served by the static providers.
//
//go:embed fixtures.json
var Fixtures []byte

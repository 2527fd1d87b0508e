package postgres

import (
	_ "embed"
)

// Schema is the relational contract the repositories are written against.
// Applying it is left to whoever owns the database.
//
//go:embed schema.sql
var Schema string

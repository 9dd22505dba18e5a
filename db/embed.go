// Package db provides the embedded schema for the gateway's local
// database.
package db

import _ "embed"

// Schema contains the DDL for the gateway's local tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// Package models maps the savings aggregates onto their tables. The domain
// packages stay free of gorm tags; each model converts with FromDomain and
// ToDomain, and repositories only ever hand domain types to their callers.
//
// Structured values (preferences, badges, contribution rules, tags) are JSON
// columns through gorm.io/datatypes.
package models

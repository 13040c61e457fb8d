// Package dbschema declares the gorm-mapped persistence schema and its
// converters to and from the domain types.
package dbschema

import "time"

// BaseModel carries the surrogate key and timestamps shared by every table.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

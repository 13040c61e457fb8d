package dbschema

import (
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(PulseLog{})
}

// PulseLog represents a persisted wake-cycle record. Rows are written by the
// life-loop scheduler; this service only reads and prunes them, so the schema
// references entities by public ID rather than a foreign key.
type PulseLog struct {
	BaseModel
	EntityPublicID string    `gorm:"type:varchar(50);index;not null"`
	Status         string    `gorm:"type:varchar(20);index;not null"`
	Summary        string    `gorm:"type:text"`
	DurationMS     int64     `gorm:"not null;default:0"`
	StartedAt      time.Time `gorm:"type:timestamp;index"`
}

// EtoD converts a schema log back to the domain representation.
func (l *PulseLog) EtoD() *pulse.Log {
	if l == nil {
		return nil
	}
	return &pulse.Log{
		ID:             l.ID,
		EntityPublicID: l.EntityPublicID,
		Status:         pulse.Status(l.Status),
		Summary:        l.Summary,
		DurationMS:     l.DurationMS,
		StartedAt:      l.StartedAt,
		CreatedAt:      l.CreatedAt,
	}
}

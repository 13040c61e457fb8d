package dbschema

import (
	"github.com/continuumhq/continuum-server/internal/domain/feedback"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Feedback{})
}

// Feedback represents the persisted feedback schema.
type Feedback struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   *uint  `gorm:"index"`
	Category string `gorm:"type:varchar(50);not null;index"`
	Message  string `gorm:"type:text;not null"`
	Rating   *int
}

// NewSchemaFeedback converts a domain feedback row into a schema instance.
func NewSchemaFeedback(f *feedback.Feedback) *Feedback {
	if f == nil {
		return nil
	}
	return &Feedback{
		BaseModel: BaseModel{
			ID:        f.ID,
			CreatedAt: f.CreatedAt,
		},
		PublicID: f.PublicID,
		UserID:   f.UserID,
		Category: f.Category,
		Message:  f.Message,
		Rating:   f.Rating,
	}
}

// EtoD converts a schema feedback row back to the domain representation.
func (f *Feedback) EtoD() *feedback.Feedback {
	if f == nil {
		return nil
	}
	return &feedback.Feedback{
		ID:        f.ID,
		PublicID:  f.PublicID,
		UserID:    f.UserID,
		Category:  f.Category,
		Message:   f.Message,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
}

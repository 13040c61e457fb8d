package dbschema

import (
	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(SignupRequest{})
}

// SignupRequest represents the persisted signup request schema. Rows are
// unique by email; repeat requests bump the attempt counter.
type SignupRequest struct {
	BaseModel
	PublicID string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email    string  `gorm:"type:varchar(320);uniqueIndex;not null"`
	Source   *string `gorm:"type:varchar(100)"`
	Message  *string `gorm:"type:text"`
	Attempts int     `gorm:"not null;default:1"`
}

// NewSchemaSignupRequest converts a domain request into a schema instance.
func NewSchemaSignupRequest(r *signup.Request) *SignupRequest {
	if r == nil {
		return nil
	}
	return &SignupRequest{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		PublicID: r.PublicID,
		Email:    r.Email,
		Source:   r.Source,
		Message:  r.Message,
		Attempts: r.Attempts,
	}
}

// EtoD converts a schema request back to the domain representation.
func (r *SignupRequest) EtoD() *signup.Request {
	if r == nil {
		return nil
	}
	return &signup.Request{
		ID:        r.ID,
		PublicID:  r.PublicID,
		Email:     r.Email,
		Source:    r.Source,
		Message:   r.Message,
		Attempts:  r.Attempts,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

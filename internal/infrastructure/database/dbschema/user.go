package dbschema

import (
	"time"

	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(User{})
}

// User represents the persisted user schema.
type User struct {
	BaseModel
	PublicID        string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Username        string  `gorm:"type:varchar(320);uniqueIndex;not null"`
	Email           *string `gorm:"type:varchar(320)"`
	Role            string  `gorm:"type:varchar(20);not null;default:'user';index"`
	Blocked         bool    `gorm:"not null;default:false"`
	LastActiveAt    *time.Time
	DefaultEntityID *string `gorm:"type:varchar(50)"`
	AgentModel      *string `gorm:"type:varchar(100)"`
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		PublicID:        u.PublicID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            string(u.Role),
		Blocked:         u.Blocked,
		LastActiveAt:    u.LastActiveAt,
		DefaultEntityID: u.DefaultEntityID,
		AgentModel:      u.AgentModel,
	}
}

// EtoD converts a schema user back to the domain representation.
func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}
	return &user.User{
		ID:              u.ID,
		PublicID:        u.PublicID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            user.Role(u.Role),
		Blocked:         u.Blocked,
		LastActiveAt:    u.LastActiveAt,
		DefaultEntityID: u.DefaultEntityID,
		AgentModel:      u.AgentModel,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

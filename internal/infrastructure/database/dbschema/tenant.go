package dbschema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Workspace{})
	database.RegisterSchemaForAutoMigrate(Task{})
	database.RegisterSchemaForAutoMigrate(MediaObject{})
	database.RegisterSchemaForAutoMigrate(Membership{})
	database.RegisterSchemaForAutoMigrate(Prompt{})
}

// The tables below are owner-scoped records written by other services in the
// deployment. This service touches them only during the user purge cascade,
// so they carry schema definitions without domain packages of their own.

// Workspace is a user-owned workspace record.
type Workspace struct {
	BaseModel
	PublicID string            `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   uint              `gorm:"index;not null"`
	Name     string            `gorm:"type:varchar(120);not null"`
	Settings datatypes.JSONMap `gorm:"type:jsonb"`
}

// Task is a user-owned scheduled or background task record.
type Task struct {
	BaseModel
	PublicID    string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID      uint       `gorm:"index;not null"`
	Kind        string     `gorm:"type:varchar(50);not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb"`
	CompletedAt *time.Time `gorm:"type:timestamp"`
}

// MediaObject is a user-owned uploaded object record, keyed by ULID the way
// the upload service writes it.
type MediaObject struct {
	ID          string    `gorm:"type:varchar(26);primarykey"`
	UserID      uint      `gorm:"index;not null"`
	Bucket      string    `gorm:"type:varchar(100);not null"`
	ObjectKey   string    `gorm:"type:varchar(500);not null"`
	ContentType string    `gorm:"type:varchar(100)"`
	SizeBytes   int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Membership links a user to a workspace.
type Membership struct {
	BaseModel
	UserID      uint   `gorm:"uniqueIndex:idx_membership_user_workspace,priority:1;not null"`
	WorkspaceID uint   `gorm:"uniqueIndex:idx_membership_user_workspace,priority:2;not null"`
	Role        string `gorm:"type:varchar(20);not null;default:'member'"`
}

// Prompt is a user-owned saved prompt record.
type Prompt struct {
	BaseModel
	PublicID string `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserID   uint   `gorm:"index;not null"`
	Title    string `gorm:"type:varchar(256);not null"`
	Body     string `gorm:"type:text;not null"`
}

package dbschema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/continuumhq/continuum-server/internal/domain/memory"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(ContinuityMemory{})
}

// ContinuityMemory represents the persisted memory schema. Memories belong to
// exactly one entity and are removed with it.
type ContinuityMemory struct {
	BaseModel
	PublicID   string                       `gorm:"type:varchar(50);uniqueIndex:idx_memory_entity_public,priority:2;not null"`
	EntityID   uint                         `gorm:"uniqueIndex:idx_memory_entity_public,priority:1;index;not null"`
	Entity     Entity                       `gorm:"foreignKey:EntityID"`
	Type       string                       `gorm:"type:varchar(20);not null"`
	Content    string                       `gorm:"type:text;not null"`
	Importance int                          `gorm:"not null;default:5"`
	Tags       datatypes.JSONSlice[string]  `gorm:"type:jsonb"`
	Embedding  datatypes.JSONSlice[float64] `gorm:"type:jsonb"`
	OccurredAt time.Time                    `gorm:"type:timestamp;index"`
}

// NewSchemaContinuityMemory converts a domain memory into a schema instance.
func NewSchemaContinuityMemory(m *memory.Memory) *ContinuityMemory {
	if m == nil {
		return nil
	}
	return &ContinuityMemory{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		PublicID:   m.PublicID,
		EntityID:   m.EntityID,
		Type:       string(m.Type),
		Content:    m.Content,
		Importance: m.Importance,
		Tags:       datatypes.NewJSONSlice(m.Tags),
		Embedding:  datatypes.NewJSONSlice(m.Embedding),
		OccurredAt: m.OccurredAt,
	}
}

// EtoD converts a schema memory back to the domain representation.
func (m *ContinuityMemory) EtoD() *memory.Memory {
	if m == nil {
		return nil
	}
	return &memory.Memory{
		ID:         m.ID,
		PublicID:   m.PublicID,
		EntityID:   m.EntityID,
		Type:       memory.Type(m.Type),
		Content:    m.Content,
		Importance: m.Importance,
		Tags:       []string(m.Tags),
		Embedding:  []float64(m.Embedding),
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

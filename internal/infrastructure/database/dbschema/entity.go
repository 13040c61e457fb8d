package dbschema

import (
	"gorm.io/datatypes"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Entity{})
}

// Entity represents the persisted entity schema.
type Entity struct {
	BaseModel
	PublicID        string                                  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name            string                                  `gorm:"type:varchar(120);not null"`
	Description     *string                                 `gorm:"type:text"`
	IsSystem        bool                                    `gorm:"not null;default:false;index"`
	AssocUserIDs    datatypes.JSONSlice[string]             `gorm:"type:jsonb"`
	Model           string                                  `gorm:"type:varchar(100);not null"`
	ModelOverride   *string                                 `gorm:"type:varchar(100)"`
	ReasoningEffort string                                  `gorm:"type:varchar(20);not null;default:'medium'"`
	Tools           datatypes.JSONSlice[string]             `gorm:"type:jsonb"`
	Voice           *datatypes.JSONType[entity.VoiceConfig] `gorm:"type:jsonb"`
	Pulse           *datatypes.JSONType[entity.PulseSchedule] `gorm:"type:jsonb"`
}

// NewSchemaEntity converts a domain entity into a schema instance.
func NewSchemaEntity(e *entity.Entity) *Entity {
	if e == nil {
		return nil
	}
	s := &Entity{
		BaseModel: BaseModel{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			UpdatedAt: e.UpdatedAt,
		},
		PublicID:        e.PublicID,
		Name:            e.Name,
		Description:     e.Description,
		IsSystem:        e.IsSystem,
		AssocUserIDs:    datatypes.NewJSONSlice(e.AssocUserIDs),
		Model:           e.Model,
		ModelOverride:   e.ModelOverride,
		ReasoningEffort: string(e.ReasoningEffort),
		Tools:           datatypes.NewJSONSlice(e.Tools),
	}
	if e.Voice != nil {
		v := datatypes.NewJSONType(*e.Voice)
		s.Voice = &v
	}
	if e.Pulse != nil {
		p := datatypes.NewJSONType(*e.Pulse)
		s.Pulse = &p
	}
	return s
}

// EtoD converts a schema entity back to the domain representation.
func (e *Entity) EtoD() *entity.Entity {
	if e == nil {
		return nil
	}
	d := &entity.Entity{
		ID:              e.ID,
		PublicID:        e.PublicID,
		Name:            e.Name,
		Description:     e.Description,
		IsSystem:        e.IsSystem,
		AssocUserIDs:    []string(e.AssocUserIDs),
		Model:           e.Model,
		ModelOverride:   e.ModelOverride,
		ReasoningEffort: entity.ReasoningEffort(e.ReasoningEffort),
		Tools:           []string(e.Tools),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.Voice != nil {
		v := e.Voice.Data()
		d.Voice = &v
	}
	if e.Pulse != nil {
		p := e.Pulse.Data()
		d.Pulse = &p
	}
	return d
}

package entity

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// MemoryStore is the slice of the memory layer the entity service needs when
// cascading deletes.
type MemoryStore interface {
	DeleteForEntities(ctx context.Context, entityIDs []uint) (int64, error)
}

// PurgeResult reports what an orphaned-entity purge removed.
type PurgeResult struct {
	DeletedEntities int64 `json:"deletedEntities"`
	DeletedMemories int64 `json:"deletedMemories"`
}

// Service owns entity configuration and the orphan purge.
type Service struct {
	repo     Repository
	memories MemoryStore
	log      zerolog.Logger

	defaultName  string
	defaultModel string
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, memories MemoryStore, log zerolog.Logger, defaultName, defaultModel string) *Service {
	return &Service{
		repo:         repo,
		memories:     memories,
		log:          log,
		defaultName:  defaultName,
		defaultModel: defaultModel,
	}
}

// Input carries the mutable configuration of an entity.
type Input struct {
	Name            string
	Description     *string
	IsSystem        bool
	AssocUserIDs    []string
	Model           string
	ModelOverride   *string
	ReasoningEffort ReasoningEffort
	Tools           []string
	Voice           *VoiceConfig
	Pulse           *PulseSchedule
}

func (s *Service) validate(ctx context.Context, input Input) error {
	if input.Name == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"entity name is required", nil, "c7f2e0d4-1a8b-4963-b5c2-8e07d41f6a39")
	}
	if input.ReasoningEffort != "" && !input.ReasoningEffort.Valid() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown reasoning effort", nil, "4d81b6f0-93ce-47a2-8e15-b0c62d9f7a31")
	}
	return nil
}

// Create persists a new entity with a generated public ID.
func (s *Service) Create(ctx context.Context, input Input) (*Entity, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	effort := input.ReasoningEffort
	if effort == "" {
		effort = ReasoningEffortMedium
	}
	model := input.Model
	if model == "" {
		model = s.defaultModel
	}

	e := &Entity{
		PublicID:        idgen.NewPublicID("ent"),
		Name:            input.Name,
		Description:     input.Description,
		IsSystem:        input.IsSystem,
		AssocUserIDs:    input.AssocUserIDs,
		Model:           model,
		ModelOverride:   input.ModelOverride,
		ReasoningEffort: effort,
		Tools:           input.Tools,
		Voice:           input.Voice,
		Pulse:           input.Pulse,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the configuration of an existing entity.
func (s *Service) Update(ctx context.Context, publicID string, input Input) (*Entity, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	e, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	e.Name = input.Name
	e.Description = input.Description
	e.AssocUserIDs = input.AssocUserIDs
	if input.Model != "" {
		e.Model = input.Model
	}
	e.ModelOverride = input.ModelOverride
	if input.ReasoningEffort != "" {
		e.ReasoningEffort = input.ReasoningEffort
	}
	e.Tools = input.Tools
	e.Voice = input.Voice
	e.Pulse = input.Pulse

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetByPublicID resolves an entity by public ID.
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*Entity, error) {
	e, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"entity not found", nil, "9b3f57a1-6c2d-4e80-bf49-d105e8c7263a")
	}
	return e, nil
}

// ListSummaries returns every entity with its memory count.
func (s *Service) ListSummaries(ctx context.Context) ([]*Summary, error) {
	return s.repo.ListSummaries(ctx)
}

// EnsureSystemDefault creates the fallback system entity on first start. A
// chat always references exactly one entity, so the default must exist before
// the HTTP surface comes up.
func (s *Service) EnsureSystemDefault(ctx context.Context) (*Entity, error) {
	existing, err := s.repo.FindSystemDefault(ctx)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	created, err := s.Create(ctx, Input{
		Name:     s.defaultName,
		IsSystem: true,
		Model:    s.defaultModel,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("entity_id", created.PublicID).Msg("created default system entity")
	return created, nil
}

// Delete removes one entity and all of its memories.
func (s *Service) Delete(ctx context.Context, publicID string) (int64, error) {
	e, err := s.GetByPublicID(ctx, publicID)
	if err != nil {
		return 0, err
	}
	deletedMemories, err := s.memories.DeleteForEntities(ctx, []uint{e.ID})
	if err != nil {
		return 0, err
	}
	if err := s.repo.Delete(ctx, e.ID); err != nil {
		return deletedMemories, err
	}
	return deletedMemories, nil
}

// PurgeOrphaned deletes exactly the entities satisfying the orphan predicate
// plus their memories, and reports matching counts.
func (s *Service) PurgeOrphaned(ctx context.Context) (*PurgeResult, error) {
	orphans, err := s.repo.FindOrphaned(ctx)
	if err != nil {
		return nil, err
	}
	if len(orphans) == 0 {
		return &PurgeResult{}, nil
	}

	ids := functional.Map(orphans, func(e *Entity) uint { return e.ID })
	deletedMemories, err := s.memories.DeleteForEntities(ctx, ids)
	if err != nil {
		return nil, err
	}
	deletedEntities, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("entities", deletedEntities).
		Int64("memories", deletedMemories).
		Msg("purged orphaned entities")

	return &PurgeResult{
		DeletedEntities: deletedEntities,
		DeletedMemories: deletedMemories,
	}, nil
}

// DeleteMany removes the given entities and their memories, reporting both
// counts. A nil or empty ID list is a no-op.
func (s *Service) DeleteMany(ctx context.Context, ids []uint) (int64, int64, error) {
	if len(ids) == 0 {
		return 0, 0, nil
	}
	deletedMemories, err := s.memories.DeleteForEntities(ctx, ids)
	if err != nil {
		return 0, 0, err
	}
	deletedEntities, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return deletedEntities, deletedMemories, err
	}
	return deletedEntities, deletedMemories, nil
}

// DisassociateUser strips a user from every entity's association list and
// returns the entities left orphaned by the removal. Used by the user purge.
func (s *Service) DisassociateUser(ctx context.Context, userPublicID string) ([]*Entity, error) {
	all, err := s.repo.FindByFilter(ctx, Filter{}, nil)
	if err != nil {
		return nil, err
	}

	var orphaned []*Entity
	for _, e := range all {
		kept := functional.Filter(e.AssocUserIDs, func(id string) bool { return id != userPublicID })
		if len(kept) == len(e.AssocUserIDs) {
			continue
		}
		e.AssocUserIDs = kept
		if err := s.repo.Update(ctx, e); err != nil {
			return orphaned, err
		}
		if e.Orphaned() {
			orphaned = append(orphaned, e)
		}
	}
	return orphaned, nil
}

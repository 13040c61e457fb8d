package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// tenantFields are stripped from imported records so a memory file exported
// from one entity or user can never re-attach foreign ownership on import.
var tenantFields = []string{"entityId", "userId", "assocEntityIds"}

// Service owns memory CRUD plus the bulk import/export and clear flows.
type Service struct {
	repo Repository
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Input carries the mutable fields of a memory.
type Input struct {
	Type       Type       `json:"type"`
	Content    string     `json:"content"`
	Importance int        `json:"importance"`
	Tags       []string   `json:"tags,omitempty"`
	Embedding  []float64  `json:"embedding,omitempty"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

func (s *Service) validate(ctx context.Context, input Input) error {
	if !input.Type.Valid() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"unknown memory type", nil, "0e7c5a92-4d13-48f6-b8a0-c36e92d1f754")
	}
	if input.Content == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"memory content is required", nil, "7a1d40c8-e562-4b9f-8370-19f6c2d8e4ab")
	}
	if input.Importance < 1 || input.Importance > 10 {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"importance must be between 1 and 10", nil, "b58f13e7-20ad-46c9-9e82-d470a3c6f519")
	}
	return nil
}

func (s *Service) build(ctx context.Context, entityID uint, input Input) (*Memory, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	occurredAt := time.Now().UTC()
	if input.OccurredAt != nil {
		occurredAt = *input.OccurredAt
	}
	return &Memory{
		PublicID:   idgen.NewPublicID("mem"),
		EntityID:   entityID,
		Type:       input.Type,
		Content:    input.Content,
		Importance: input.Importance,
		Tags:       input.Tags,
		Embedding:  input.Embedding,
		OccurredAt: occurredAt,
	}, nil
}

// List returns every memory of the entity, newest first.
func (s *Service) List(ctx context.Context, entityID uint) ([]*Memory, error) {
	return s.repo.ListByEntity(ctx, entityID)
}

// Create persists a new memory for the entity.
func (s *Service) Create(ctx context.Context, entityID uint, input Input) (*Memory, error) {
	m, err := s.build(ctx, entityID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Update replaces the content of one memory.
func (s *Service) Update(ctx context.Context, entityID uint, publicID string, input Input) (*Memory, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}
	m, err := s.repo.FindByPublicID(ctx, entityID, publicID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"memory not found", nil, "61c9f2e0-8d47-4a35-b1f8-024e7c5d93ab")
	}

	m.Type = input.Type
	m.Content = input.Content
	m.Importance = input.Importance
	m.Tags = input.Tags
	if input.Embedding != nil {
		m.Embedding = input.Embedding
	}
	if input.OccurredAt != nil {
		m.OccurredAt = *input.OccurredAt
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete removes one memory.
func (s *Service) Delete(ctx context.Context, entityID uint, publicID string) error {
	return s.repo.Delete(ctx, entityID, publicID)
}

// Clear removes the whole collection of the entity and reports the count.
func (s *Service) Clear(ctx context.Context, entityID uint) (int64, error) {
	return s.repo.DeleteForEntities(ctx, []uint{entityID})
}

// BulkDeleteResult reports an all-settled bulk delete.
type BulkDeleteResult struct {
	Deleted int      `json:"deleted"`
	Failed  []string `json:"failed,omitempty"`
}

// BulkDelete fires one delete per ID concurrently and joins them all-settled:
// individual failures are collected rather than short-circuiting the rest.
func (s *Service) BulkDelete(ctx context.Context, entityID uint, publicIDs []string) (*BulkDeleteResult, error) {
	result := &BulkDeleteResult{}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, publicID := range publicIDs {
		publicID := publicID
		g.Go(func() error {
			err := s.repo.Delete(gctx, entityID, publicID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, publicID)
			} else {
				result.Deleted++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// SanitizeImport validates that raw is a JSON array and strips the tenant
// identifying fields from every record before they are decoded into inputs.
func SanitizeImport(ctx context.Context, raw json.RawMessage) ([]Input, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"import payload must be a JSON array", err, "f3e82c01-6b5d-49a7-8410-d92c7e6f1a53")
	}

	inputs := make([]Input, 0, len(records))
	for i, record := range records {
		for _, field := range tenantFields {
			delete(record, field)
		}
		cleaned, err := json.Marshal(record)
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to re-encode import record")
		}
		var input Input
		if err := json.Unmarshal(cleaned, &input); err != nil {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
				"malformed import record", err, "ac51e9d7-34f0-4b68-92c5-7e0d81b6f243",
				map[string]any{"index": i})
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// Import replaces the entity's whole collection with the sanitized records.
// Caller-supplied identifiers are never persisted; every imported memory gets
// a fresh public ID.
func (s *Service) Import(ctx context.Context, entityID uint, inputs []Input) (int, error) {
	memories := make([]*Memory, 0, len(inputs))
	for _, input := range inputs {
		m, err := s.build(ctx, entityID, input)
		if err != nil {
			return 0, err
		}
		memories = append(memories, m)
	}
	if err := s.repo.ReplaceForEntity(ctx, entityID, memories); err != nil {
		return 0, err
	}
	return len(memories), nil
}

// ExportRecord is the serialized form of a memory in an export file.
// Ownership fields are intentionally absent, mirroring the import guard.
type ExportRecord struct {
	Type       Type      `json:"type"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	Tags       []string  `json:"tags,omitempty"`
	Embedding  []float64 `json:"embedding,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Export serializes the entity's collection as a point-in-time snapshot.
func (s *Service) Export(ctx context.Context, entityID uint) ([]ExportRecord, error) {
	memories, err := s.repo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	records := make([]ExportRecord, 0, len(memories))
	for _, m := range memories {
		records = append(records, ExportRecord{
			Type:       m.Type,
			Content:    m.Content,
			Importance: m.Importance,
			Tags:       m.Tags,
			Embedding:  m.Embedding,
			OccurredAt: m.OccurredAt,
		})
	}
	return records, nil
}

// DeleteForEntities cascades memory deletion for the entity purge flows.
func (s *Service) DeleteForEntities(ctx context.Context, entityIDs []uint) (int64, error) {
	return s.repo.DeleteForEntities(ctx, entityIDs)
}

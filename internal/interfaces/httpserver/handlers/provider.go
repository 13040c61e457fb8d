package handlers

import (
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/feedback"
	"github.com/continuumhq/continuum-server/internal/domain/memory"
	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/infrastructure/modelcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/queueclient"
	"github.com/continuumhq/continuum-server/internal/infrastructure/toolcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/voicecatalog"
)

// Provider wires HTTP handlers.
type Provider struct {
	User      *UserHandler
	Entity    *EntityHandler
	Memory    *MemoryHandler
	Chat      *ChatHandler
	Feedback  *FeedbackHandler
	Signup    *SignupHandler
	Pulse     *PulseHandler
	Catalog   *CatalogHandler
	Operation *OperationHandler
}

// Dependencies collects everything the handler layer needs.
type Dependencies struct {
	Users      *user.Service
	Entities   *entity.Service
	Memories   *memory.Service
	Chats      *chat.Service
	Feedback   *feedback.Service
	Signups    *signup.Service
	Pulses     *pulse.Service
	Purger     *purge.Purger
	Operations *workflow.Registry
	Queue      *queueclient.Client
	Voices     *voicecatalog.Client
	Models     *modelcatalog.Client
	Tools      *toolcatalog.Catalog
}

func NewProvider(deps Dependencies, log zerolog.Logger) *Provider {
	return &Provider{
		User:      NewUserHandler(deps.Users, deps.Purger, deps.Operations, log),
		Entity:    NewEntityHandler(deps.Entities, deps.Tools, deps.Operations, log),
		Memory:    NewMemoryHandler(deps.Memories, deps.Entities, log),
		Chat:      NewChatHandler(deps.Chats, log),
		Feedback:  NewFeedbackHandler(deps.Feedback, log),
		Signup:    NewSignupHandler(deps.Signups, log),
		Pulse:     NewPulseHandler(deps.Pulses, log),
		Catalog:   NewCatalogHandler(deps.Queue, deps.Voices, deps.Models, deps.Tools, log),
		Operation: NewOperationHandler(deps.Operations),
	}
}

package signup

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/utils/idgen"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// Accounts is the slice of the user layer the approval flow needs.
type Accounts interface {
	Create(ctx context.Context, input user.CreateInput) (*user.User, error)
}

// AccountLookup resolves existing accounts by username.
type AccountLookup interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

// Service owns signup request logging, listing, and approval.
type Service struct {
	repo     Repository
	accounts Accounts
	lookup   AccountLookup
	log      zerolog.Logger
}

// NewService constructs a Service with required dependencies.
func NewService(repo Repository, accounts Accounts, lookup AccountLookup, log zerolog.Logger) *Service {
	return &Service{repo: repo, accounts: accounts, lookup: lookup, log: log}
}

// Log upserts a request row by email; repeated attempts for the same email
// bump the counter instead of duplicating rows.
func (s *Service) Log(ctx context.Context, email string, source, message *string) (*Request, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"a valid email is required", nil, "b92c5e07-1d48-4f6a-83b0-76e1d20c9f58")
	}

	return s.repo.UpsertByEmail(ctx, &Request{
		PublicID: idgen.NewPublicID("sreq"),
		Email:    email,
		Source:   source,
		Message:  message,
		Attempts: 1,
	})
}

// List returns one page of requests plus the total count.
func (s *Service) List(ctx context.Context, filter Filter, pagination *query.Pagination) ([]*Request, int64, error) {
	rows, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ApprovalResult reports an approval: Created is nil when an existing account
// already matched the email.
type ApprovalResult struct {
	Created *user.User
}

// Approve turns a request into a user account. When an account with
// username == email already exists, only the request is deleted and no
// duplicate account is created, so re-approving the same email is safe.
func (s *Service) Approve(ctx context.Context, publicID string) (*ApprovalResult, error) {
	req, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"signup request not found", nil, "05e7d9c3-86b1-4a2f-b4d8-3f91c60e27a5")
	}

	existing, err := s.lookup.FindByUsername(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{}
	if existing == nil {
		email := req.Email
		created, err := s.accounts.Create(ctx, user.CreateInput{
			Username: req.Email,
			Email:    &email,
			Role:     user.RoleUser,
		})
		if err != nil {
			return nil, err
		}
		result.Created = created
		s.log.Info().Str("email", req.Email).Msg("approved signup request, account created")
	} else {
		s.log.Info().Str("email", req.Email).Msg("approved signup request, account already existed")
	}

	if err := s.repo.Delete(ctx, req.ID); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes one request without creating an account.
func (s *Service) Delete(ctx context.Context, publicID string) error {
	req, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if req == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"signup request not found", nil, "67a40f81-2e9d-4c53-b7e6-d108c25f9a34")
	}
	return s.repo.Delete(ctx, req.ID)
}

// PruneStale deletes requests older than the retention window.
func (s *Service) PruneStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, time.Now().UTC().Add(-maxAge))
}

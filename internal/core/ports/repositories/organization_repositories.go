package repositories

import (
	"context"

	"github.com/tockawaffle/jelli-backend/internal/core/domain"
)

// OrganizationReader defines read operations for organization data. The clock
// state machine only ever reads organizations and memberships; organization
// management lives in the dashboard, outside this service.
type OrganizationReader interface {
	// FindOrganizationByID retrieves an organization with its decoded settings.
	FindOrganizationByID(ctx context.Context, orgID string) (*domain.Organization, error)

	// FindMember retrieves the membership of a user in an organization, or
	// apperrors.ErrNotFound when the user does not belong to it.
	FindMember(ctx context.Context, userID, orgID string) (*domain.Member, error)
}

// OrganizationRepositoryFacade combines all organization repository interfaces.
type OrganizationRepositoryFacade interface {
	OrganizationReader
}

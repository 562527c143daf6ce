package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tockawaffle/jelli-backend/internal/apperrors"
	"github.com/tockawaffle/jelli-backend/internal/core/domain"
	portsrepo "github.com/tockawaffle/jelli-backend/internal/core/ports/repositories"
	"github.com/tockawaffle/jelli-backend/internal/models"
)

type PgxOrganizationRepository struct {
	BaseRepository
}

func newPgxOrganizationRepository(pool *pgxpool.Pool) portsrepo.OrganizationRepositoryFacade {
	return &PgxOrganizationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OrganizationRepositoryFacade = (*PgxOrganizationRepository)(nil)

// decodeSettings parses the settings document exactly once, here at the
// storage boundary. Rows written by an older dashboard release carry the
// document double-encoded as a JSON string; those are unwrapped first so the
// rest of the codebase only ever sees typed settings.
func decodeSettings(raw []byte, orgID string) (domain.OrganizationSettings, error) {
	var settings domain.OrganizationSettings
	if len(raw) == 0 {
		return settings, nil
	}

	payload := raw
	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		payload = []byte(wrapped)
	}

	if err := json.Unmarshal(payload, &settings); err != nil {
		return settings, fmt.Errorf("failed to decode settings for organization %s: %w", orgID, err)
	}
	return settings, nil
}

func toDomainOrganization(m models.Organization) (domain.Organization, error) {
	settings, err := decodeSettings(m.Settings, m.OrgID)
	if err != nil {
		return domain.Organization{}, err
	}
	return domain.Organization{
		OrgID:    m.OrgID,
		Name:     m.Name,
		Settings: settings,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}

func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, orgID string) (*domain.Organization, error) {
	query := `
		SELECT org_id, name, settings, created_at, created_by, last_updated_at, last_updated_by
		FROM organizations
		WHERE org_id = $1;
	`
	var m models.Organization
	err := r.Pool.QueryRow(ctx, query, orgID).Scan(
		&m.OrgID,
		&m.Name,
		&m.Settings,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization %s: %w", orgID, err)
	}

	org, err := toDomainOrganization(m)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *PgxOrganizationRepository) FindMember(ctx context.Context, userID, orgID string) (*domain.Member, error) {
	query := `
		SELECT m.user_id, m.org_id, u.name, m.role, m.lunch_time, m.joined_at
		FROM members m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.user_id = $1 AND m.org_id = $2;
	`
	var m models.Member
	err := r.Pool.QueryRow(ctx, query, userID, orgID).Scan(
		&m.UserID,
		&m.OrgID,
		&m.Name,
		&m.Role,
		&m.LunchTime,
		&m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find member %s in organization %s: %w", userID, orgID, err)
	}

	return &domain.Member{
		UserID:    m.UserID,
		OrgID:     m.OrgID,
		Name:      m.Name,
		Role:      domain.MemberRole(m.Role),
		LunchTime: m.LunchTime,
		JoinedAt:  m.JoinedAt,
	}, nil
}

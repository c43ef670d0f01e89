package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/talent-service/internal/domain"
)

// CandidateRepository persists candidates. Every method takes the owning
// organization explicitly; a candidate is invisible outside its organization.
type CandidateRepository interface {
	Create(ctx context.Context, candidate *domain.Candidate) error
	GetByID(ctx context.Context, orgID, id int64) (*domain.Candidate, error)
	List(ctx context.Context, orgID int64, limit, offset int) ([]domain.Candidate, error)
	Delete(ctx context.Context, orgID, id int64) error
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

func (r *candidateRepository) Create(ctx context.Context, candidate *domain.Candidate) error {
	const query = `
        INSERT INTO candidates (organization_id, full_name, email, created_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		candidate.OrganizationID,
		candidate.FullName,
		candidate.Email,
		candidate.CreatedBy,
	).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt)
}

func (r *candidateRepository) GetByID(ctx context.Context, orgID, id int64) (*domain.Candidate, error) {
	const query = `
        SELECT id, organization_id, full_name, email, created_by, created_at, updated_at
        FROM candidates WHERE organization_id=$1 AND id=$2`

	var candidate domain.Candidate
	if err := r.pool.QueryRow(ctx, query, orgID, id).Scan(
		&candidate.ID,
		&candidate.OrganizationID,
		&candidate.FullName,
		&candidate.Email,
		&candidate.CreatedBy,
		&candidate.CreatedAt,
		&candidate.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get candidate %d: %w", id, err)
	}
	return &candidate, nil
}

func (r *candidateRepository) List(ctx context.Context, orgID int64, limit, offset int) ([]domain.Candidate, error) {
	const query = `
        SELECT id, organization_id, full_name, email, created_by, created_at, updated_at
        FROM candidates WHERE organization_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var candidate domain.Candidate
		if err := rows.Scan(
			&candidate.ID,
			&candidate.OrganizationID,
			&candidate.FullName,
			&candidate.Email,
			&candidate.CreatedBy,
			&candidate.CreatedAt,
			&candidate.UpdatedAt,
		); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

func (r *candidateRepository) Delete(ctx context.Context, orgID, id int64) error {
	const query = `DELETE FROM candidates WHERE organization_id=$1 AND id=$2`

	cmd, err := r.pool.Exec(ctx, query, orgID, id)
	if err != nil {
		return fmt.Errorf("delete candidate %d: %w", id, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

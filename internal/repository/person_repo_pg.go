package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airlineapi/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PersonSearchCriteria struct {
	FirstName string
	LastName  string
	Email     string
	Limit     int
	Offset    int
}

type PersonRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	List(ctx context.Context) ([]domain.Person, error)
	Search(ctx context.Context, criteria PersonSearchCriteria) ([]domain.Person, error)
	GetByID(ctx context.Context, id int64) (*domain.Person, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Person, error)
	Create(ctx context.Context, person *domain.Person) error
	Update(ctx context.Context, person *domain.Person) error
	Delete(ctx context.Context, id, version int64) error
}

type PGPersonRepository struct {
	pool *pgxpool.Pool
}

func NewPersonRepository(pool *pgxpool.Pool) PersonRepository {
	return &PGPersonRepository{pool: pool}
}

const personColumns = `id, first_name, last_name, email, phone_number, date_of_birth, version, created_at, updated_at`

func (r *PGPersonRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PGPersonRepository) List(ctx context.Context) ([]domain.Person, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT `+personColumns+` FROM persons ORDER BY id`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanPersons(rows)
}

func (r *PGPersonRepository) Search(ctx context.Context, criteria PersonSearchCriteria) ([]domain.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE 1=1`
	args := make([]any, 0, 5)
	if criteria.FirstName != "" {
		args = append(args, criteria.FirstName)
		query += fmt.Sprintf(" AND first_name=$%d", len(args))
	}
	if criteria.LastName != "" {
		args = append(args, criteria.LastName)
		query += fmt.Sprintf(" AND last_name=$%d", len(args))
	}
	if criteria.Email != "" {
		args = append(args, criteria.Email)
		query += fmt.Sprintf(" AND email=$%d", len(args))
	}
	query += " ORDER BY id"
	if criteria.Limit > 0 {
		args = append(args, criteria.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if criteria.Offset > 0 {
		args = append(args, criteria.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()
	return scanPersons(rows)
}

func (r *PGPersonRepository) GetByID(ctx context.Context, id int64) (*domain.Person, error) {
	return r.get(ctx, `SELECT `+personColumns+` FROM persons WHERE id=$1`, id)
}

// GetForUpdate locks the person row for the rest of the surrounding
// transaction, serializing duplicate-ticket checks for the same person.
func (r *PGPersonRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Person, error) {
	return r.get(ctx, `SELECT `+personColumns+` FROM persons WHERE id=$1 FOR UPDATE`, id)
}

func (r *PGPersonRepository) get(ctx context.Context, query string, id int64) (*domain.Person, error) {
	row := db(ctx, r.pool).QueryRow(ctx, query, id)
	var p domain.Person
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.DateOfBirth, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("person %d: %w", id, domain.ErrNotFound)
		}
		return nil, mapPgError(err)
	}
	return &p, nil
}

func (r *PGPersonRepository) Create(ctx context.Context, person *domain.Person) error {
	err := db(ctx, r.pool).QueryRow(ctx, `INSERT INTO persons (first_name, last_name, email, phone_number, date_of_birth, version)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id, version, created_at, updated_at`,
		person.FirstName, person.LastName, person.Email, person.PhoneNumber, person.DateOfBirth).
		Scan(&person.ID, &person.Version, &person.CreatedAt, &person.UpdatedAt)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *PGPersonRepository) Update(ctx context.Context, person *domain.Person) error {
	res, err := db(ctx, r.pool).Exec(ctx, `UPDATE persons
		SET first_name=$1, last_name=$2, email=$3, phone_number=$4, date_of_birth=$5, version=version+1, updated_at=now()
		WHERE id=$6 AND version=$7`,
		person.FirstName, person.LastName, person.Email, person.PhoneNumber, person.DateOfBirth, person.ID, person.Version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, person.ID)
	}
	person.Version++
	return nil
}

func (r *PGPersonRepository) Delete(ctx context.Context, id, version int64) error {
	res, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM persons WHERE id=$1 AND version=$2`, id, version)
	if err != nil {
		return mapPgError(err)
	}
	if res.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, id)
	}
	return nil
}

func (r *PGPersonRepository) staleOrMissing(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("person %d: %w", id, domain.ErrConcurrentModification)
}

func scanPersons(rows pgx.Rows) ([]domain.Person, error) {
	persons := make([]domain.Person, 0)
	for rows.Next() {
		var p domain.Person
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.PhoneNumber, &p.DateOfBirth, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

var _ PersonRepository = (*PGPersonRepository)(nil)

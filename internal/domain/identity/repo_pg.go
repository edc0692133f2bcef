package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediconnect/api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) Repository { return &profileRepoPG{pool: pool} }

func (r *profileRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const profileCols = `identity_id, full_name, age, gender, phone, avatar_url, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.IdentityID, &p.FullName, &p.Age, &p.Gender, &p.Phone,
		&p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) GetByIdentityID(ctx context.Context, identityID string) (*Profile, error) {
	p, err := scanProfile(r.conn(ctx).QueryRow(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE identity_id = $1`, identityID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepoPG) GetByIdentityIDs(ctx context.Context, identityIDs []string) (map[string]*Profile, error) {
	result := make(map[string]*Profile, len(identityIDs))
	if len(identityIDs) == 0 {
		return result, nil
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+profileCols+` FROM profiles WHERE identity_id = ANY($1)`, identityIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result[p.IdentityID] = p
	}
	return result, rows.Err()
}

func (r *profileRepoPG) Upsert(ctx context.Context, p *Profile) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO profiles (identity_id, full_name, age, gender, phone, avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity_id) DO UPDATE SET
			full_name = $2, age = $3, gender = $4, phone = $5, avatar_url = $6,
			updated_at = NOW()
		RETURNING created_at, updated_at`,
		p.IdentityID, p.FullName, p.Age, p.Gender, p.Phone, p.AvatarURL).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

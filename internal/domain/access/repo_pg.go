package access

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

type roleRepoPG struct{ pool *pgxpool.Pool }

func NewRoleRepoPG(pool *pgxpool.Pool) RoleRepository { return &roleRepoPG{pool: pool} }

func (r *roleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *roleRepoPG) Get(ctx context.Context, identityID string) (Role, error) {
	var stored string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT role FROM user_roles WHERE identity_id = $1`, identityID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoleNone, nil
	}
	if err != nil {
		return RoleNone, err
	}
	return ParseRole(stored), nil
}

func (r *roleRepoPG) Set(ctx context.Context, identityID string, role Role) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO user_roles (identity_id, role)
		VALUES ($1, $2)
		ON CONFLICT (identity_id) DO UPDATE SET role = $2, updated_at = NOW()`,
		identityID, string(role))
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipdm/edworking/internal/domain/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

type NewUser struct {
	Email        string
	TgID         string
	PasswordHash string
	DisplayName  string
	BirthDate    time.Time
	City         string
	About        string
	Profession   string
}

const userColumns = `id, email, tg_id, password_hash, display_name, birth_date, city, about, profession, avatar_key, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, u NewUser) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.TgID) == "" || strings.TrimSpace(u.PasswordHash) == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}

	var rec model.User
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (
	email,
	tg_id,
	password_hash,
	display_name,
	birth_date,
	city,
	about,
	profession,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
RETURNING `+userColumns+`
`, strings.ToLower(strings.TrimSpace(u.Email)), strings.TrimSpace(u.TgID), u.PasswordHash,
		u.DisplayName, u.BirthDate, u.City, u.About, u.Profession).Scan(
		&rec.ID,
		&rec.Email,
		&rec.TgID,
		&rec.PasswordHash,
		&rec.DisplayName,
		&rec.BirthDate,
		&rec.City,
		&rec.About,
		&rec.Profession,
		&rec.AvatarKey,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, ErrUserExists
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepo) GetByTgID(ctx context.Context, tgID string) (model.User, error) {
	return r.getOne(ctx, `WHERE tg_id = $1`, strings.TrimSpace(tgID))
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}

	var rec model.User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where).Scan(
		&rec.ID,
		&rec.Email,
		&rec.TgID,
		&rec.PasswordHash,
		&rec.DisplayName,
		&rec.BirthDate,
		&rec.City,
		&rec.About,
		&rec.Profession,
		&rec.AvatarKey,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}

	return rec, nil
}

type UserUpdate struct {
	DisplayName *string
	City        *string
	About       *string
	Profession  *string
	AvatarKey   *string
}

func (r *UserRepo) Update(ctx context.Context, id int64, upd UserUpdate) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if id <= 0 {
		return model.User{}, fmt.Errorf("invalid user id")
	}

	var rec model.User
	err := r.pool.QueryRow(ctx, `
UPDATE users SET
	display_name = COALESCE($2, display_name),
	city         = COALESCE($3, city),
	about        = COALESCE($4, about),
	profession   = COALESCE($5, profession),
	avatar_key   = COALESCE($6, avatar_key),
	updated_at   = NOW()
WHERE id = $1
RETURNING `+userColumns+`
`, id, upd.DisplayName, upd.City, upd.About, upd.Profession, upd.AvatarKey).Scan(
		&rec.ID,
		&rec.Email,
		&rec.TgID,
		&rec.PasswordHash,
		&rec.DisplayName,
		&rec.BirthDate,
		&rec.City,
		&rec.About,
		&rec.Profession,
		&rec.AvatarKey,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}

	return rec, nil
}

// ListProfiles returns the full directory snapshot in registration order.
// Directory order is the iteration order every derived set follows.
func (r *UserRepo) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, display_name, avatar_key, city, about, profession
FROM users
ORDER BY created_at, id
`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.AvatarKey, &p.City, &p.About, &p.Profession); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}

	return profiles, nil
}

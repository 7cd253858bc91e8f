package providers

import (
	"context"
	"errors"
	"fmt"

	"certdesk/internal/domains"
	"certdesk/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserProvider struct {
	db *pgxpool.Pool
}

func NewUserProvider(db *pgxpool.Pool) *UserProvider {
	return &UserProvider{
		db: db,
	}
}

const userColumns = `id, email, passhash, faculty, specialization, year, role, created_at`

func scanUser(row pgx.Row) (domains.User, error) {
	var u domains.User
	var faculty, specialization *string
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &faculty, &specialization,
		&u.Year, &role, &u.CreatedAt); err != nil {
		return domains.User{}, err
	}
	if faculty != nil {
		f := domains.Faculty(*faculty)
		u.Faculty = &f
	}
	if specialization != nil {
		sp := domains.Specialization(*specialization)
		u.Specialization = &sp
	}
	u.Role = domains.Role(role)
	return u, nil
}

func (s *UserProvider) SaveUser(ctx context.Context, passHash string, user domains.UserRegister) (domains.User, error) {
	var faculty, specialization *string
	if user.Faculty != nil {
		v := string(*user.Faculty)
		faculty = &v
	}
	if user.Specialization != nil {
		v := string(*user.Specialization)
		specialization = &v
	}

	row := s.db.QueryRow(ctx, `
        INSERT INTO accounts (email, passhash, faculty, specialization, year, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING `+userColumns,
		user.Email, passHash, faculty, specialization, user.Year, string(domains.RoleStudent))

	saved, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domains.User{}, storage.ErrUserExist
		}
		return domains.User{}, fmt.Errorf("insert user: %w", err)
	}
	return saved, nil
}

func (s *UserProvider) GetUserByID(ctx context.Context, userID int64) (domains.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM accounts WHERE id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, storage.ErrNotFound
		}
		return domains.User{}, err
	}
	return user, nil
}

func (s *UserProvider) GetUserByEmail(ctx context.Context, email string) (domains.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM accounts WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, storage.ErrNotFound
		}
		return domains.User{}, err
	}
	return user, nil
}

func (s *UserProvider) UpdateRole(ctx context.Context, email string, role domains.Role) (domains.User, error) {
	row := s.db.QueryRow(ctx, `
        UPDATE accounts
        SET role = $1
        WHERE email = $2
        RETURNING `+userColumns,
		string(role), email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, storage.ErrNotFound
		}
		return domains.User{}, fmt.Errorf("update role: %w", err)
	}
	return user, nil
}

func (s *UserProvider) UpdatePassword(ctx context.Context, email string, passHash string) error {
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET passhash = $1 WHERE email = $2`, passHash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

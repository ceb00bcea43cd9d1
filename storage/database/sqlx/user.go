package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core"
	"github.com/nethmiu/Eco-Plus-Y3S2-WE35-sub000/core/user"
)

const userColumns = "id, name, email, city, photo, is_active, roles, password_hash, created_at, updated_at, last_login"

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	City         string    `db:"city"`
	Photo        string    `db:"photo"`
	IsActive     bool      `db:"is_active"`
	Roles        string    `db:"roles"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) toRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		City:         usr.City,
		Photo:        usr.Photo,
		IsActive:     usr.IsActive,
		Roles:        strings.Join(usr.Roles, ","),
		PasswordHash: string(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) fromRow(row userRow) user.User {
	var roles []string
	if row.Roles != "" {
		roles = strings.Split(row.Roles, ",")
	}
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		City:         row.City,
		Photo:        row.Photo,
		IsActive:     row.IsActive,
		Roles:        roles,
		PasswordHash: []byte(row.PasswordHash),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.toRow(usr)
	q := repo.exec.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.exec.ExecContext(ctx, q,
		row.ID, row.Name, row.Email, row.City, row.Photo, row.IsActive, row.Roles, row.PasswordHash,
		row.CreatedAt, row.UpdatedAt, row.LastLogin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		row   userRow
		err   error
		query = `SELECT ` + userColumns + ` FROM users WHERE `
	)
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		err = repo.exec.GetContext(ctx, &row, repo.exec.Rebind(query+"id = ?"), filter.ID)
	case filter.Email != "":
		err = repo.exec.GetContext(ctx, &row, repo.exec.Rebind(query+"email = ?"), filter.Email)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return repo.fromRow(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter) ([]user.User, error) {
	var w where
	if filter != nil {
		if filter.IDs != nil {
			if len(filter.IDs) == 0 {
				return []user.User{}, nil
			}
			clause, args, err := sqlx.In("id IN (?)", filter.IDs)
			if err != nil {
				return nil, errors.Wrap(err, "building users query")
			}
			w.add(clause, args...)
		}
		// users with Name or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			w.add("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", val, val)
		}
	}

	var rows []userRow
	q := repo.exec.Rebind(`SELECT ` + userColumns + ` FROM users` + w.String() + ` ORDER BY created_at, id`)
	if err := repo.exec.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.fromRow(row))
	}
	return users, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !isUUID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	row := repo.toRow(usr)
	q := repo.exec.Rebind(`UPDATE users SET name = ?, email = ?, city = ?, photo = ?, is_active = ?, roles = ?,
		password_hash = ?, updated_at = ?, last_login = ? WHERE id = ?`)
	res, err := repo.exec.ExecContext(ctx, q,
		row.Name, row.Email, row.City, row.Photo, row.IsActive, row.Roles,
		row.PasswordHash, row.UpdatedAt, row.LastLogin, row.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

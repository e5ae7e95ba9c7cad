package sqlxrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

const userColumns = "id, username, password_hash, first_name, last_name, email, role, created_at"

type userRow struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	PasswordHash []byte      `db:"password_hash"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	CreatedAt    int64       `db:"created_at"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Role:         user.Role(row.Role),
		PasswordHash: row.PasswordHash,
		CreatedAt:    core.FromMillis(row.CreatedAt),
	}
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users
}

type userRepository struct {
	baseRepository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{baseRepository{exec: exec}}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	var count int
	q := exe.Rebind("SELECT COUNT(*) FROM users WHERE username = ?")
	if err := exe.GetContext(ctx, &count, q, username); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		INSERT INTO users (username, password_hash, first_name, last_name, email, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := exe.QueryRowxContext(ctx, q,
		usr.Username, usr.PasswordHash, usr.FirstName, usr.LastName, usr.Email, string(usr.Role), core.ToMillis(usr.CreatedAt),
	).Scan(&usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	usr.CreatedAt = core.FromMillis(core.ToMillis(usr.CreatedAt))
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	q := exe.Rebind(`
		UPDATE users SET first_name = ?, last_name = ?, email = ?, password_hash = ?
		WHERE id = ?`)
	res, err := exe.ExecContext(ctx, q, usr.FirstName, usr.LastName, usr.Email, usr.PasswordHash, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	var row userRow
	q := exe.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := exe.GetContext(ctx, &row, q, id); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by ID")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)
	var row userRow
	q := exe.Rebind("SELECT " + userColumns + " FROM users WHERE username = ?")
	if err := exe.GetContext(ctx, &row, q, username); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user by username")
	}
	return row.toUser(), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, exec ...core.DBExecutor) ([]user.User, error) {
	exe := repo.getExec(exec)

	var where whereBuilder
	if filter.Role != "" {
		where.add("role = ?", string(filter.Role))
	}
	// users with FirstName or LastName matching the search keyword
	if filter.Search != "" {
		val := "%" + strings.ToLower(filter.Search) + "%"
		where.add("(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?)", val, val)
	}

	q := exe.Rebind("SELECT " + userColumns + " FROM users" + where.String() + " ORDER BY first_name, last_name, id")
	var rows []userRow
	if err := exe.SelectContext(ctx, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

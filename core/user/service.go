package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrUsernameExists       = core.DomainErr("a user with this username already exists")
	ErrAuthenticationFailed = core.DomainErr("authentication failed")

	noPermsToSetRoleErr = "not enough rights to set this role"
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		// UpdateUser overwrites the profile fields and password hash of usr.ID.
		UpdateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByUsername(ctx context.Context, username string, exec ...core.DBExecutor) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields,
		// ordered by first name, last name, then id.
		QueryUsers(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]User, error)
	}

	Service struct {
		db     core.DB
		repo   Repository
		logger core.Logger
		conf   *core.Config
	}
)

func NewService(db core.DB, repo Repository, logger core.Logger, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, logger: logger, conf: conf}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string, exec core.DBExecutor) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, exec); err != nil {
		if err == ErrUsernameExists {
			return err
		}
		return errors.Wrap(err, "checking username uniqueness")
	}
	return nil
}

// Create validates nu and inserts a new User.
// A session cannot create a user whose role outranks its own.
func (svc *Service) Create(ctx context.Context, sess Session, nu NewUser) (User, error) {
	if err := sess.Authorize(OpCreateUser); err != nil {
		return User{}, err
	}
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if RolePriority(nu.Role) > RolePriority(sess.Role) {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "role", Error: noPermsToSetRoleErr})
	}
	return svc.create(ctx, nu)
}

// create inserts an already validated NewUser.
func (svc *Service) create(ctx context.Context, nu NewUser) (User, error) {
	usr, err := nu.toUser()
	if err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	var created User
	err = svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		if err := svc.checkUniqueness(ctx, usr.Username, tx); err != nil {
			return err
		}
		created, err = svc.repo.CreateUser(ctx, usr, tx)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return created, nil
}

// Get returns the User with the given id; found is false if there is none.
func (svc *Service) Get(ctx context.Context, sess Session, id int) (usr User, found bool, err error) {
	if err = sess.AuthorizeSelf(OpViewUsers, id); err != nil {
		return User{}, false, err
	}
	return svc.get(ctx, id)
}

func (svc *Service) get(ctx context.Context, id int) (User, bool, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return usr, true, nil
}

func (svc *Service) GetByUsername(ctx context.Context, sess Session, uname string) (User, bool, error) {
	if err := sess.Authorize(OpViewUsers); err != nil {
		return User{}, false, err
	}
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, false, nil
		}
		return User{}, false, err
	}
	return usr, true, nil
}

// ListStudents returns every STUDENT ordered by display name.
func (svc *Service) ListStudents(ctx context.Context, sess Session) ([]User, error) {
	return svc.SearchStudents(ctx, sess, "")
}

// SearchStudents returns the STUDENTs whose first or last name contains query (case-insensitive).
func (svc *Service) SearchStudents(ctx context.Context, sess Session, query string) ([]User, error) {
	if err := sess.Authorize(OpViewUsers); err != nil {
		return nil, err
	}
	filter := QueryFilter{Role: RoleStudent, Search: query}
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter)
}

// Authenticate checks the credentials and returns the matching User.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return usr, nil
}

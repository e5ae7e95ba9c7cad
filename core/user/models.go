package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/academia/core"
)

var PasswordHashCost = bcrypt.DefaultCost // mockable

type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        null.String `json:"email"`
	Role         Role        `json:"role"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// FullName is the display name used for ordering and reports.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

func (u User) Session() Session {
	return Session{UserID: u.ID, Role: u.Role}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=3,max=100,username"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"required,notblank,max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=150"`
	Role      Role   `json:"role" validate:"required,role"`

	// placeholder secret assigned by the system, exempt from the similarity rule
	defaultPassword bool
}

func (nu *NewUser) clean() {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = Role(strings.ToUpper(core.CleanString(string(nu.Role))))
}

func (nu *NewUser) Validate() error {
	nu.clean()
	return core.ValidateStruct(nu)
}

func (nu NewUser) toUser() (User, error) {
	usr := User{
		Username:  nu.Username,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     null.NewString(nu.Email, nu.Email != ""),
		Role:      nu.Role,
		CreatedAt: core.NowFunc().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return usr, nil
}

type QueryFilter struct {
	Role Role
	// Search does a case-insensitive match on one of User.FirstName or User.LastName.
	Search string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

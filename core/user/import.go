package user

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

// ImportColumns are the columns every import row must supply; "password" is optional.
var ImportColumns = []string{"username", "first_name", "last_name", "email"}

type ImportRow struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type ImportResult struct {
	Imported   int      `json:"imported"`
	Errors     []string `json:"errors"`
	MoreErrors int      `json:"more_errors"` // failures beyond the reported ones
}

func (res *ImportResult) addError(max int, rowNum int, err error) {
	if len(res.Errors) < max {
		res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
		return
	}
	res.MoreErrors++
}

// Failed returns the total number of rows that could not be imported.
func (res ImportResult) Failed() int {
	return len(res.Errors) + res.MoreErrors
}

// ImportStudents upserts every row as a STUDENT by username.
// Row failures are collected without aborting the batch; only storage faults stop it.
func (svc *Service) ImportStudents(ctx context.Context, sess Session, rows []ImportRow) (ImportResult, error) {
	res := ImportResult{Errors: make([]string, 0)}
	if err := sess.Authorize(OpImportStudents); err != nil {
		return res, err
	}

	maxErrs := svc.conf.Import.MaxReportedErrors
	for i, row := range rows {
		rowNum := i + 1
		if err := svc.importRow(ctx, row); err != nil {
			if !core.IsRecoverable(err) {
				svc.logger.Error("importing students", err, sess)
				return res, errors.Wrapf(err, "importing row %d", rowNum)
			}
			svc.logger.Warn(fmt.Sprintf("import row %d skipped", rowNum), err, sess)
			res.addError(maxErrs, rowNum, err)
			continue
		}
		res.Imported++
	}
	svc.logger.Info("students imported", map[string]interface{}{"imported": res.Imported, "failed": res.Failed()}, sess)
	return res, nil
}

func (svc *Service) importRow(ctx context.Context, row ImportRow) error {
	pwd := row.Password
	useDefault := core.CleanString(pwd) == ""
	if useDefault {
		pwd = svc.conf.Import.DefaultPassword
	}
	nu := NewUser{
		Username:        row.Username,
		Password:        pwd,
		FirstName:       row.FirstName,
		LastName:        row.LastName,
		Email:           row.Email,
		Role:            RoleStudent,
		defaultPassword: useDefault,
	}
	if err := nu.Validate(); err != nil {
		return err
	}
	if nu.Email == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "this field is required"})
	}
	usr, err := nu.toUser()
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}

	return svc.db.WithinTx(ctx, func(tx core.DBExecutor) error {
		existing, err := svc.repo.GetUserByUsername(ctx, usr.Username, tx)
		switch {
		case err == ErrNotFound:
			_, err = svc.repo.CreateUser(ctx, usr, tx)
			return err
		case err != nil:
			return err
		case existing.Role != RoleStudent:
			return core.NewValidationError(nil, core.FieldError{
				Field: "username",
				Error: fmt.Sprintf("username %q belongs to a %s", usr.Username, existing.Role),
			})
		}

		existing.FirstName = usr.FirstName
		existing.LastName = usr.LastName
		existing.Email = null.StringFrom(usr.Email.String)
		existing.PasswordHash = usr.PasswordHash
		_, err = svc.repo.UpdateUser(ctx, existing, tx)
		return err
	})
}

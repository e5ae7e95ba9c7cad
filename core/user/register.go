package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

// Registration failure codes.
const (
	CodeUsernameExists = "USERNAME_EXISTS"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeForbidden      = "FORBIDDEN"
	CodeDatabaseError  = "DATABASE_ERROR"
)

// RegistrationRequest is the payload of the external registration module.
type RegistrationRequest struct {
	FirstName string `json:"first_name" validate:"required,notblank"`
	LastName  string `json:"last_name" validate:"required,notblank"`
	Username  string `json:"username" validate:"required,notblank"`
	Password  string `json:"password" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type RegistrationResponse struct {
	Success   bool   `json:"success"`
	StudentID int    `json:"student_id,omitempty"`
	Code      string `json:"code,omitempty"` // set on failure
	Error     string `json:"error,omitempty"`
}

func failedRegistration(err error) RegistrationResponse {
	code := CodeInvalidInput
	switch {
	case errors.Is(err, ErrUsernameExists):
		code = CodeUsernameExists
	case errors.Is(err, core.ErrForbidden):
		code = CodeForbidden
	}
	return RegistrationResponse{Code: code, Error: err.Error()}
}

// Register creates a STUDENT from an external registration request.
// Recoverable failures (duplicate username, invalid input, permissions) are reported in the
// response; the returned error is only set for storage faults.
// Enrolling the new student is a separate enrollment call made by the caller.
func (svc *Service) Register(ctx context.Context, sess Session, req RegistrationRequest) (RegistrationResponse, error) {
	if err := sess.Authorize(OpRegisterStudent); err != nil {
		return failedRegistration(err), nil
	}
	if err := core.ValidateStruct(req); err != nil {
		return failedRegistration(err), nil
	}

	nu := NewUser{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      RoleStudent,
	}
	if err := nu.Validate(); err != nil {
		return failedRegistration(err), nil
	}

	usr, err := svc.create(ctx, nu)
	if err != nil {
		if core.IsRecoverable(err) {
			return failedRegistration(err), nil
		}
		svc.logger.Error("registering student", err, sess)
		return RegistrationResponse{Code: CodeDatabaseError, Error: "database error"}, err
	}
	svc.logger.Info("student registered", map[string]interface{}{"student_id": usr.ID, "username": usr.Username}, sess)
	return RegistrationResponse{Success: true, StudentID: usr.ID}, nil
}

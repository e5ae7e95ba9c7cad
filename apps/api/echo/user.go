package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/user"
)

type userApi struct {
	deps *Deps
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := userApi{deps: deps}

	ug := g.Group("/users", jwt)
	ug.POST("", api.create)
	ug.GET("/:id", api.retrieve)

	sg := g.Group("/students", jwt)
	sg.GET("", api.queryStudents)
	sg.POST("/register", api.register, capabilityMiddleware(user.OpRegisterStudent))
	sg.POST("/import", api.importStudents, capabilityMiddleware(user.OpImportStudents))
	sg.GET("/:id/courses", api.studentCourses)
	sg.GET("/:id/deadlines", api.studentDeadlines)
}

type (
	// RegisterRequest is a registration followed by the enrollment of the new student.
	RegisterRequest struct {
		user.RegistrationRequest
		CourseIDs []int `json:"course_ids"`
	}

	RegisterResponse struct {
		user.RegistrationResponse
		Enrolled int `json:"enrolled"`
	}

	ImportRequest struct {
		Rows []user.ImportRow `json:"rows"`
	}
)

// Handlers

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	usr, err := api.deps.Users.Create(ctx.Request().Context(), getSession(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	usr, found, err := api.deps.Users.Get(ctx.Request().Context(), getSession(ctx), id)
	if err != nil {
		return err
	}
	if !found {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) queryStudents(ctx echo.Context) error {
	students, err := api.deps.Users.SearchStudents(ctx.Request().Context(), getSession(ctx), ctx.QueryParam("search"))
	if err != nil {
		return err
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *userApi) register(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	c := ctx.Request().Context()
	sess := getSession(ctx)

	resp, err := api.deps.Users.Register(c, sess, data.RegistrationRequest)
	if err != nil {
		return err
	}
	if !resp.Success {
		code := http.StatusBadRequest
		switch resp.Code {
		case user.CodeUsernameExists:
			code = http.StatusConflict
		case user.CodeForbidden:
			code = http.StatusForbidden
		}
		return ctx.JSON(code, RegisterResponse{RegistrationResponse: resp})
	}

	out := RegisterResponse{RegistrationResponse: resp}
	if len(data.CourseIDs) > 0 {
		if out.Enrolled, err = api.deps.Directory.EnrollMany(c, sess, resp.StudentID, data.CourseIDs); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusCreated, out)
}

func (api *userApi) importStudents(ctx echo.Context) error {
	var data ImportRequest
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	res, err := api.deps.Users.ImportStudents(ctx.Request().Context(), getSession(ctx), data.Rows)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *userApi) studentCourses(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	courses, err := api.deps.Directory.ListEnrolledCourses(ctx.Request().Context(), getSession(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *userApi) studentDeadlines(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	from, err := timeQuery(ctx, "from")
	if err != nil {
		return err
	}
	asgs, err := api.deps.Assignments.UpcomingForStudent(ctx.Request().Context(), getSession(ctx), id, from)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asgs)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/course"
)

type courseApi struct {
	deps *Deps
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := courseApi{deps: deps}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:id/students", api.students)
	cg.POST("/:id/enrollments", api.enroll)
	cg.GET("/:id/at-risk", api.atRisk)
	cg.GET("/:id/averages", api.averages)
	cg.GET("/:id/students/:sid/average", api.studentAverage)
}

type (
	EnrollRequest struct {
		StudentID int `json:"student_id"`
	}

	EnrollResponse struct {
		StudentID int  `json:"student_id"`
		CourseID  int  `json:"course_id"`
		Created   bool `json:"created"`
	}

	AverageResponse struct {
		StudentID int     `json:"student_id"`
		CourseID  int     `json:"course_id"`
		Average   float64 `json:"average"`
	}
)

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	crs, err := api.deps.Courses.Create(ctx.Request().Context(), getSession(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	teacherID, err := intQuery(ctx, "teacher_id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	var courses []course.Course
	if teacherID > 0 {
		courses, err = api.deps.Courses.ListForTeacher(c, getSession(ctx), teacherID)
	} else {
		courses, err = api.deps.Courses.ListAll(c, getSession(ctx))
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) students(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	students, err := api.deps.Directory.ListEnrolledStudents(ctx.Request().Context(), getSession(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data EnrollRequest
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	created, err := api.deps.Directory.Enroll(ctx.Request().Context(), getSession(ctx), data.StudentID, id)
	if err != nil {
		return err
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, EnrollResponse{StudentID: data.StudentID, CourseID: id, Created: created})
}

func (api *courseApi) atRisk(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	threshold, set, err := floatQuery(ctx, "threshold")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	sess := getSession(ctx)
	if !set {
		rows, err := api.deps.Grading.AtRisk(c, sess, id)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, rows)
	}
	rows, err := api.deps.Grading.AtRiskStudents(c, sess, id, threshold)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *courseApi) averages(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	rows, err := api.deps.Grading.CourseAverages(ctx.Request().Context(), getSession(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *courseApi) studentAverage(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	sid, err := idParam(ctx, "sid")
	if err != nil {
		return err
	}
	avg, err := api.deps.Grading.AverageGrade(ctx.Request().Context(), getSession(ctx), sid, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AverageResponse{StudentID: sid, CourseID: id, Average: avg})
}

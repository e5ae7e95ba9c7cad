package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/grading"
)

type assignmentApi struct {
	deps *Deps
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := assignmentApi{deps: deps}

	g.POST("/courses/:id/assignments", api.create, jwt)
	g.GET("/courses/:id/assignments", api.query, jwt)

	ag := g.Group("/assignments", jwt)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/submissions", api.submit)
	ag.GET("/:id/submissions", api.submissions)
	ag.POST("/:id/quiz", api.submitQuiz)

	sg := g.Group("/submissions", jwt)
	sg.GET("/:id", api.submission)
	sg.PUT("/:id/grade", api.grade)
}

type (
	AssignmentResponse struct {
		assignment.Assignment
		Questions []assignment.Question `json:"questions,omitempty"`
	}

	SubmitRequest struct {
		Content string `json:"content"`
	}

	QuizRequest struct {
		Answers grading.Answers `json:"answers"`
	}

	GradeRequest struct {
		Grade    *float64 `json:"grade"`
		Feedback string   `json:"feedback"`
	}

	SubmissionResponse struct {
		grading.Submission
		Answers []grading.QuizAnswer `json:"answers,omitempty"`
	}
)

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	courseID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data assignment.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	data.CourseID = courseID

	asg, questions, err := api.deps.Assignments.Create(ctx.Request().Context(), getSession(ctx), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, AssignmentResponse{Assignment: asg, Questions: questions})
}

func (api *assignmentApi) query(ctx echo.Context) error {
	courseID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	asgs, err := api.deps.Assignments.ListForCourse(ctx.Request().Context(), getSession(ctx), courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	sess := getSession(ctx)

	asg, found, err := api.deps.Assignments.Get(c, sess, id)
	if err != nil {
		return err
	}
	if !found {
		return errHttpNotFound
	}
	resp := AssignmentResponse{Assignment: asg}
	if asg.IsQuiz() {
		if resp.Questions, err = api.deps.Assignments.ListQuestions(c, sess, asg.ID); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data SubmitRequest
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	sub, err := api.deps.Grading.Submit(ctx.Request().Context(), getSession(ctx), id, data.Content)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	subs, err := api.deps.Grading.ListSubmissions(ctx.Request().Context(), getSession(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) submitQuiz(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data QuizRequest
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	res, err := api.deps.Grading.SubmitQuiz(ctx.Request().Context(), getSession(ctx), id, data.Answers)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *assignmentApi) submission(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	c := ctx.Request().Context()
	sess := getSession(ctx)

	sub, found, err := api.deps.Grading.GetSubmission(c, sess, id)
	if err != nil {
		return err
	}
	if !found {
		return errHttpNotFound
	}
	resp := SubmissionResponse{Submission: sub}
	if resp.Answers, err = api.deps.Grading.QuizAnswers(c, sess, id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	var data GradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errBadRequest.WithInternal(err)
	}
	if data.Grade == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "grade: this field is required")
	}
	sub, err := api.deps.Grading.RecordGrade(ctx.Request().Context(), getSession(ctx), id, *data.Grade, data.Feedback)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

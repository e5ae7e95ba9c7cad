package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/academia/core/assignment"
	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
)

const seedPassword = "pass123"

var (
	seedUsers = []user.NewUser{
		{Username: "teacher1", FirstName: "Maria", LastName: "Silva", Email: "maria.silva@email.com", Role: user.RoleTeacher},
		{Username: "student1", FirstName: "João", LastName: "Santos", Email: "joao.santos@email.com", Role: user.RoleStudent},
		{Username: "student2", FirstName: "Ana", LastName: "Costa", Email: "ana.costa@email.com", Role: user.RoleStudent},
		{Username: "coordinator1", FirstName: "Carlos", LastName: "Lima", Email: "carlos.lima@email.com", Role: user.RoleCoordinator},
		{Username: "secretary1", FirstName: "Paula", LastName: "Ferreira", Email: "paula.ferreira@email.com", Role: user.RoleSecretary},
		{Username: "director1", FirstName: "Roberto", LastName: "Oliveira", Email: "roberto.oliveira@email.com", Role: user.RoleDirector},
	}

	seedCourses = []string{"Mathematics I", "Programming Fundamentals", "Data Structures"}

	// student username -> course indexes
	seedEnrollments = map[string][]int{
		"student1": {0, 1},
		"student2": {0, 2},
	}
)

func seedDate(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// seed inserts the demo teacher, students, staff, courses, enrollments and assignments.
// It does nothing if the database already holds users.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	sess := user.SystemSession()

	existing, err := cli.usrRepo.QueryUsers(ctx, user.QueryFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Fprintln(cli.out, "database already holds users, skipping seed")
		return nil
	}

	users := make(map[string]user.User, len(seedUsers))
	for _, nu := range seedUsers {
		nu.Password = seedPassword
		usr, err := cli.users.Create(ctx, sess, nu)
		if err != nil {
			return err
		}
		users[usr.Username] = usr
	}

	courses := make([]course.Course, 0, len(seedCourses))
	for _, name := range seedCourses {
		crs, err := cli.courses.Create(ctx, sess, course.NewCourse{Name: name, TeacherID: users["teacher1"].ID})
		if err != nil {
			return err
		}
		courses = append(courses, crs)
	}

	for uname, idxs := range seedEnrollments {
		ids := make([]int, 0, len(idxs))
		for _, i := range idxs {
			ids = append(ids, courses[i].ID)
		}
		if _, err := cli.directory.EnrollMany(ctx, sess, users[uname].ID, ids); err != nil {
			return err
		}
	}

	linearAlgebra := assignment.NewQuizBuilder(courses[0].ID, "Linear Algebra Quiz").
		Describe("Matrix operations and transformations").
		Due(seedDate("2025-09-22")).
		AddQuestion("What is the determinant of the 2x2 identity matrix?", [4]string{"0", "1", "2", "-1"}, assignment.OptionB, 25).
		AddQuestion("Which product is always defined for two n x n matrices?", [4]string{"AB", "A+B only", "None", "A/B"}, assignment.OptionA, 25).
		Build()

	asgs := []assignment.NewAssignment{
		{CourseID: courses[0].ID, Title: "Calculus Assignment", Description: "Solve differential equations problems", DueDate: seedDate("2025-09-15"), MaxPoints: 100, Type: assignment.TypeHomework},
		linearAlgebra,
		{CourseID: courses[1].ID, Title: "Python Project 1", Description: "Create a simple calculator application", DueDate: seedDate("2025-09-20"), MaxPoints: 100, Type: assignment.TypeProject},
		{CourseID: courses[1].ID, Title: "Data Types Exercise", Description: "Work with lists, dictionaries, and sets", DueDate: seedDate("2025-09-18"), MaxPoints: 75, Type: assignment.TypeHomework},
		{CourseID: courses[2].ID, Title: "Binary Tree Implementation", Description: "Implement binary search tree in Python", DueDate: seedDate("2025-09-25"), MaxPoints: 100, Type: assignment.TypeProject},
		{CourseID: courses[2].ID, Title: "Algorithm Analysis", Description: "Analyze time complexity of sorting algorithms", DueDate: seedDate("2025-09-30"), MaxPoints: 80, Type: assignment.TypeHomework},
	}
	for _, na := range asgs {
		if _, _, err := cli.assignments.Create(ctx, sess, na); err != nil {
			return err
		}
	}

	fmt.Fprintf(cli.out, "seeded %d users, %d courses and %d assignments (password %q)\n",
		len(seedUsers), len(courses), len(asgs), seedPassword)
	return nil
}

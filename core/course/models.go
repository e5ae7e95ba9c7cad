package course

import (
	"time"

	"github.com/trezcool/academia/core"
)

type Course struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	TeacherID   int       `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name      string `json:"name" validate:"required,notblank,max=200"`
	TeacherID int    `json:"teacher_id" validate:"required,gt=0"`
}

func (nc *NewCourse) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.ValidateStruct(nc)
}

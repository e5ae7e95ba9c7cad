package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	conf := &core.Config{Env: "TEST", TestMode: true}
	logger := NewRollbarLogger(log.New(&buf, "", 0), conf)

	sess := user.Session{UserID: 7, Role: user.RoleSecretary}
	logger.Warn("import row 2 skipped", errors.New("username: this field is required"), sess)

	assert.Equal(t,
		"import row 2 skipped\nusername: this field is required\nsession: user=7 role=SECRETARY\n",
		buf.String(),
	)
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{TestMode: true})
	fields := map[string]interface{}{"imported": 2}

	args := logger.prepare("students imported", []interface{}{fields, user.Session{UserID: 3, Role: user.RoleDirector}})
	assert.Equal(t, []interface{}{"students imported", fields}, args)
}

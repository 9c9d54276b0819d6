package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classroom-api/internal/models"
	"github.com/noah-isme/classroom-api/internal/service"
)

func TestDirectoryHandlerAdminFlow(t *testing.T) {
	h := NewDirectoryHandler(service.NewDirectoryService(newFactory(), nil, nil))
	admin := &models.SessionTeacher{Email: models.BootstrapAdminEmail, Name: models.BootstrapAdminName, Role: models.RoleAdmin}

	c, w := newGinContext(http.MethodPost, "/teachers", `{"email":"hoa@school.vn","name":"Cô Hoa"}`, teacher("lan@school.vn"))
	h.Add(c)
	mustStatus(t, w, http.StatusForbidden)

	c, w = newGinContext(http.MethodPost, "/teachers", `{"email":"hoa@school.vn","name":"Cô Hoa"}`, admin)
	h.Add(c)
	mustStatus(t, w, http.StatusCreated)

	c, w = newGinContext(http.MethodPost, "/teachers", `{"email":"HOA@school.vn"}`, admin)
	h.Add(c)
	mustStatus(t, w, http.StatusConflict)

	c, w = newGinContext(http.MethodPost, "/teachers/hoa@school.vn/lock", "", admin)
	c.AddParam("email", "hoa@school.vn")
	h.ToggleLock(c)
	mustStatus(t, w, http.StatusOK)
	var locked struct {
		IsLocked bool `json:"isLocked"`
	}
	decode(t, w, &locked)
	assert.True(t, locked.IsLocked)

	c, w = newGinContext(http.MethodGet, "/teachers", "", teacher("lan@school.vn"))
	h.List(c)
	mustStatus(t, w, http.StatusOK)
	var teachers []models.Teacher
	decode(t, w, &teachers)
	assert.Len(t, teachers, 2)
	for _, tc := range teachers {
		assert.Empty(t, tc.PasswordHash)
	}

	c, w = newGinContext(http.MethodDelete, "/teachers/admin@hdu.com", "", admin)
	c.AddParam("email", models.BootstrapAdminEmail)
	h.Delete(c)
	mustStatus(t, w, http.StatusForbidden)
}

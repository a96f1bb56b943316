package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionForm(t *testing.T) {
	form := SubmissionForm{Name: "Drill", Category: "Power Tools", Condition: "good"}

	var ferrs FieldErrors
	require.ErrorAs(t, form.Validate(), &ferrs)
	assert.Equal(t, FieldErrors{"description": "Description is required"}, ferrs)

	form.Description = "18V cordless"
	require.NoError(t, form.Validate())
	assert.Equal(t, "18V cordless", form.Input().Description)
}

func TestRegisterForm(t *testing.T) {
	form := RegisterForm{Username: "al", Email: "not-an-email", Password: "short"}

	var ferrs FieldErrors
	require.ErrorAs(t, form.Validate(), &ferrs)
	assert.Equal(t, FieldErrors{
		"username": "Username must be at least 3 characters",
		"email":    "Email address is invalid",
		"password": "Password must be at least 8 characters",
	}, ferrs)

	form = RegisterForm{Username: "alice", Email: "alice@example.org", Password: "long-enough"}
	assert.NoError(t, form.Validate())
}

func TestLoginForm(t *testing.T) {
	form := LoginForm{Username: " "}

	var ferrs FieldErrors
	require.ErrorAs(t, form.Validate(), &ferrs)
	assert.Len(t, ferrs, 2)
}

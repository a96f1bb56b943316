package forms

import (
	"strings"

	"github.com/erazemk/toolshed/internal/model"
)

// SubmissionForm proposes a new tool for the catalog.
type SubmissionForm struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description" validate:"required"`
	Category    string `form:"category" validate:"required"`
	Condition   string `form:"condition" validate:"required"`
}

var submissionMessages = messages{
	"name":        {"": "Name is required"},
	"description": {"": "Description is required"},
	"category":    {"": "Category is required"},
	"condition":   {"": "Condition is required"},
}

// Validate trims and checks the submission.
func (f *SubmissionForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Category = strings.TrimSpace(f.Category)
	f.Condition = strings.TrimSpace(f.Condition)
	return orNil(check(f, submissionMessages))
}

// Input returns the validated submission as a tool body.
func (f *SubmissionForm) Input() model.ToolInput {
	return model.ToolInput{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Condition:   f.Condition,
	}
}

// LoginForm holds credentials.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

var loginMessages = messages{
	"username": {"": "Username is required"},
	"password": {"": "Password is required"},
}

// Validate checks that both credentials are present.
func (f *LoginForm) Validate() error {
	f.Username = strings.TrimSpace(f.Username)
	return orNil(check(f, loginMessages))
}

// RegisterForm creates a new account.
type RegisterForm struct {
	Username string `form:"username" validate:"required,min=3"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

var registerMessages = messages{
	"username": {
		"required": "Username is required",
		"min":      "Username must be at least 3 characters",
	},
	"email": {
		"required": "Email is required",
		"email":    "Email address is invalid",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 8 characters",
	},
}

// Validate checks the registration fields.
func (f *RegisterForm) Validate() error {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return orNil(check(f, registerMessages))
}

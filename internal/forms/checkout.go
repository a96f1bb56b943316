package forms

import (
	"strings"

	"github.com/erazemk/toolshed/internal/model"
)

// CheckoutForm is the borrower declaration collected before checkout.
type CheckoutForm struct {
	Name               string `form:"name" validate:"required"`
	Address            string `form:"address" validate:"required"`
	Phone              string `form:"phone" validate:"required"`
	ExpectedReturnDate string `form:"expectedReturnDate" validate:"required,datetime=2006-01-02"`
	AgreeToTerms       bool   `form:"agreeToTerms" validate:"required"`
}

var checkoutMessages = messages{
	"name":    {"": "Name is required"},
	"address": {"": "Address is required"},
	"phone":   {"": "Phone number is required"},
	"expectedReturnDate": {
		"required": "Expected return date is required",
		"datetime": "Expected return date must be a date (YYYY-MM-DD)",
	},
	"agreeToTerms": {"": "You must agree to the terms"},
}

// Validate trims the text fields and checks every field. All five are
// required; nothing is accepted partially.
func (f *CheckoutForm) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	f.Phone = strings.TrimSpace(f.Phone)
	f.ExpectedReturnDate = strings.TrimSpace(f.ExpectedReturnDate)
	return orNil(check(f, checkoutMessages))
}

// Declaration returns the validated payload.
func (f *CheckoutForm) Declaration() model.CheckoutDeclaration {
	return model.CheckoutDeclaration{
		FullName:           f.Name,
		Address:            f.Address,
		Phone:              f.Phone,
		ExpectedReturnDate: f.ExpectedReturnDate,
		AgreedToTerms:      f.AgreeToTerms,
	}
}

// Submit validates the form and hands the declaration to confirm. confirm
// is not called when validation fails.
func (f *CheckoutForm) Submit(confirm func(model.CheckoutDeclaration) error) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return confirm(f.Declaration())
}

// Package validate checks form input before it reaches the meal API and
// reports problems as a field -> message map the templates can render
// next to each input.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report violations under the form field name, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates any tagged struct and flattens the result.
func Struct(s any) Violations {
	err := validate.Struct(s)
	if err == nil {
		return Violations{}
	}
	out := Violations{}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		out["form"] = "invalid input"
		return out
	}
	for _, fe := range errs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "min":
		return "too short"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "invalid"
	}
}

// LoginForm carries the sign-in fields.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// SignupForm carries the registration fields.
type SignupForm struct {
	Name       string `form:"name" validate:"required"`
	Email      string `form:"email" validate:"required,email"`
	Password   string `form:"password" validate:"required,min=6"`
	HostelID   string `form:"hostel_id" validate:"required"`
	RoomNumber string `form:"room_number" validate:"required"`
}

// TicketForm carries the complaint fields; photos are staged separately.
type TicketForm struct {
	Category    string `form:"category" validate:"required"`
	SubCategory string `form:"sub_category"`
	Urgency     string `form:"urgency" validate:"required,oneof=basic medium critical"`
	Description string `form:"description" validate:"required"`
}

// MenuItemForm carries the admin item-creation fields.
type MenuItemForm struct {
	Name     string `form:"name" validate:"required"`
	Category string `form:"category" validate:"required,oneof=veg non-veg"`
	MealType string `form:"meal_type" validate:"required,oneof=breakfast lunch dinner"`
}

// MenuForm carries the admin menu-publication fields; item IDs are taken
// straight from the checkbox set.
type MenuForm struct {
	Date     string `form:"date" validate:"required"`
	MealType string `form:"meal_type" validate:"required,oneof=breakfast lunch dinner"`
}

// ProfileForm carries the editable profile fields.
type ProfileForm struct {
	Name       string `form:"name" validate:"required"`
	RoomNumber string `form:"room_number"`
}

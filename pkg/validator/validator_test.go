package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150,username"`
	Email     string `form:"email" validate:"required,email"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func validSignup() signupForm {
	return signupForm{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validSignup()))
}

func TestValidate_ReportsFormFieldNames(t *testing.T) {
	f := validSignup()
	f.Email = "not-an-email"

	err := Validate(f)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Enter a valid email address.", valErr.Fields()["email"])
}

func TestValidate_PasswordMismatch(t *testing.T) {
	f := validSignup()
	f.Password2 = "something-else"

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Equal(t, "The two password fields didn't match.", valErr.Fields()["password2"])
}

func TestValidate_UsernameCharacters(t *testing.T) {
	f := validSignup()
	f.Username = "bad name!"

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Contains(t, valErr.Fields()["username"], "may contain only letters")

	f.Username = "ok.name+tag@host_1-x"
	assert.NoError(t, Validate(f))
}

func TestValidate_FirstErrorPerFieldWins(t *testing.T) {
	f := validSignup()
	f.Username = ""

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Equal(t, "This field is required.", valErr.Fields()["username"])
	assert.Contains(t, valErr.Error(), "field 'username'")
}

func TestRegisterValidation_CustomTag(t *testing.T) {
	require.NoError(t, RegisterValidation("is_blue", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "blue"
	}))

	type colorForm struct {
		Color string `form:"color" validate:"is_blue"`
	}

	assert.NoError(t, Validate(colorForm{Color: "blue"}))

	var valErr *ValidationError
	require.ErrorAs(t, Validate(colorForm{Color: "red"}), &valErr)
	assert.Equal(t, "Failed on 'is_blue' validation.", valErr.Fields()["color"])

	RegisterMessage("is_blue", "Pick blue.")
	err := Validate(colorForm{Color: "red"})
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Pick blue.", valErr.Fields()["color"])
}

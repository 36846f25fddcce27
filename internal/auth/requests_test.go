package auth

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMentorRequest() RegisterMentorRequest {
	return RegisterMentorRequest{
		Email:             "alice@x.com",
		Password:          "password123",
		FirstName:         "Alice",
		LastName:          "Levi",
		PhoneNumber:       "054-1234567",
		YearsOfExperience: 7,
	}
}

func TestRegisterMentorRequestValidate(t *testing.T) {
	assert.NoError(t, validMentorRequest().Validate())

	t.Run("missing required fields", func(t *testing.T) {
		err := RegisterMentorRequest{}.Validate()
		require.Error(t, err)

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		for _, field := range []string{"email", "password", "firstName", "lastName", "phoneNumber"} {
			assert.Contains(t, verrs, field)
		}
	})

	t.Run("short password", func(t *testing.T) {
		req := validMentorRequest()
		req.Password = "short"
		assert.Error(t, req.Validate())
	})

	t.Run("negative experience", func(t *testing.T) {
		req := validMentorRequest()
		req.YearsOfExperience = -1
		assert.Error(t, req.Validate())
	})

	t.Run("oversized description", func(t *testing.T) {
		req := validMentorRequest()
		req.GeneralDescription = string(make([]byte, 1001))
		assert.Error(t, req.Validate())
	})
}

func TestRegisterMenteeRequestValidate(t *testing.T) {
	valid := RegisterMenteeRequest{
		Email:       "bob@x.com",
		Password:    "password123",
		FirstName:   "Bob",
		LastName:    "Builder",
		PhoneNumber: "054-7654321",
	}
	assert.NoError(t, valid.Validate())

	t.Run("description capped at 500", func(t *testing.T) {
		req := valid
		req.GeneralDescription = string(make([]byte, 501))
		assert.Error(t, req.Validate())
	})
}

func TestLoginRequestValidate(t *testing.T) {
	assert.NoError(t, LoginRequest{Email: "bob@x.com", Password: "pw"}.Validate())
	assert.Error(t, LoginRequest{Password: "pw"}.Validate())
	assert.Error(t, LoginRequest{Email: "bob@x.com"}.Validate())
}

func TestVerifyAndResendRequestValidate(t *testing.T) {
	assert.NoError(t, VerifyEmailRequest{Token: "tok"}.Validate())
	assert.Error(t, VerifyEmailRequest{}.Validate())

	assert.NoError(t, ResendVerificationRequest{Email: "bob@x.com"}.Validate())
	assert.Error(t, ResendVerificationRequest{}.Validate())
}

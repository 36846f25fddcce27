package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// RegisterMentorRequest is the multipart mentor registration form, minus the
// photo part which is validated separately.
type RegisterMentorRequest struct {
	Email                string   `json:"email"`
	Password             string   `json:"password"`
	FirstName            string   `json:"firstName"`
	LastName             string   `json:"lastName"`
	PhoneNumber          string   `json:"phoneNumber"`
	LinkedinURL          string   `json:"linkedinUrl"`
	ProgrammingLanguages []string `json:"programmingLanguages"`
	Technologies         []string `json:"technologies"`
	Domains              []string `json:"domains"`
	YearsOfExperience    int      `json:"yearsOfExperience"`
	GeneralDescription   string   `json:"generalDescription"`
}

func (r RegisterMentorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.PhoneNumber, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.LinkedinURL, validation.Length(0, 255)),
		validation.Field(&r.YearsOfExperience, validation.Min(0), validation.Max(60)),
		validation.Field(&r.GeneralDescription, validation.Length(0, 1000)),
	)
}

// RegisterMenteeRequest is the mentee registration payload.
type RegisterMenteeRequest struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	PhoneNumber        string `json:"phoneNumber"`
	GeneralDescription string `json:"generalDescription"`
}

func (r RegisterMenteeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.PhoneNumber, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.GeneralDescription, validation.Length(0, 500)),
	)
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// VerifyEmailRequest carries the one-time verification token.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (r VerifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// ResendVerificationRequest asks for a fresh verification email.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
	)
}

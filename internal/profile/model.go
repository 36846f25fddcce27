package profile

import (
	"errors"

	"github.com/google/uuid"

	"github.com/mentorhub/mentorhub/internal/user"
)

var ErrNotFound = errors.New("profile not found")

// Profile is a closed union over the role-specific profile variants. Lookup
// sites switch on the concrete type (or Kind) and must handle every variant.
type Profile interface {
	Kind() user.Role
	DisplayName() (first, last string)

	sealed()
}

// Mentor is the profile variant for mentor accounts. Photo bytes live in the
// repository and are loaded separately.
type Mentor struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"-"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Email                string    `json:"email"`
	PhoneNumber          string    `json:"phoneNumber"`
	LinkedinURL          string    `json:"linkedinUrl,omitempty"`
	ProgrammingLanguages []string  `json:"programmingLanguages"`
	Technologies         []string  `json:"technologies"`
	Domains              []string  `json:"domains"`
	YearsOfExperience    int       `json:"yearsOfExperience"`
	GeneralDescription   string    `json:"generalDescription"`
	HasProfilePhoto      bool      `json:"hasProfilePhoto"`
}

func (m *Mentor) Kind() user.Role                    { return user.RoleMentor }
func (m *Mentor) DisplayName() (first, last string) { return m.FirstName, m.LastName }
func (m *Mentor) sealed()                           {}

// Mentee is the profile variant for mentee accounts.
type Mentee struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"-"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	PhoneNumber        string    `json:"phoneNumber"`
	GeneralDescription string    `json:"generalDescription,omitempty"`
}

func (m *Mentee) Kind() user.Role                    { return user.RoleMentee }
func (m *Mentee) DisplayName() (first, last string) { return m.FirstName, m.LastName }
func (m *Mentee) sealed()                           {}

// Admin accounts carry no stored profile row; the variant exists so role
// dispatch stays exhaustive.
type Admin struct {
	Email string `json:"email"`
}

func (a *Admin) Kind() user.Role                    { return user.RoleAdmin }
func (a *Admin) DisplayName() (first, last string) { return "Admin", "" }
func (a *Admin) sealed()                           {}

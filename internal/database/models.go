package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the accounts table. Email uniqueness is enforced case-insensitively
// at the storage layer (unique index on lower(email)) so concurrent
// registrations cannot both succeed.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                    uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email                 string     `bun:"email,notnull"`
	PasswordHash          string     `bun:"password_hash,notnull"`
	Role                  string     `bun:"role,notnull"`
	EmailVerified         bool       `bun:"email_verified,notnull,default:false"`
	VerificationToken     *string    `bun:"verification_token"`
	VerificationExpiresAt *time.Time `bun:"verification_expires_at"`
	LastLoginAt           *time.Time `bun:"last_login_at"`
	Active                bool       `bun:"active,notnull,default:true"`
	CreatedAt             time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Mentor is the mentor profile table. The photo is stored inline; profile
// lookups skip the photo columns unless explicitly requested.
type Mentor struct {
	bun.BaseModel `bun:"table:mentors,alias:m"`

	ID                   uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID               uuid.UUID `bun:"user_id,notnull,type:uuid"`
	FirstName            string    `bun:"first_name,notnull"`
	LastName             string    `bun:"last_name,notnull"`
	Email                string    `bun:"email,notnull"`
	PhoneNumber          string    `bun:"phone_number,notnull"`
	LinkedinURL          string    `bun:"linkedin_url"`
	ProgrammingLanguages []string  `bun:"programming_languages,array"`
	Technologies         []string  `bun:"technologies,array"`
	Domains              []string  `bun:"domains,array"`
	YearsOfExperience    int       `bun:"years_of_experience,notnull"`
	GeneralDescription   string    `bun:"general_description"`
	Photo                []byte    `bun:"photo"`
	PhotoContentType     string    `bun:"photo_content_type"`
	PhotoFileName        string    `bun:"photo_file_name"`
	CreatedAt            time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Mentee is the mentee profile table.
type Mentee struct {
	bun.BaseModel `bun:"table:mentees,alias:me"`

	ID                 uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID             uuid.UUID `bun:"user_id,notnull,type:uuid"`
	FirstName          string    `bun:"first_name,notnull"`
	LastName           string    `bun:"last_name,notnull"`
	Email              string    `bun:"email,notnull"`
	PhoneNumber        string    `bun:"phone_number,notnull"`
	GeneralDescription string    `bun:"general_description"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

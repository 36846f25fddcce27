package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mentorhub/mentorhub/internal/database"
	"github.com/mentorhub/mentorhub/internal/user"
)

// mentorListColumns excludes the photo bytes; those are only loaded by
// GetMentorPhoto.
var mentorListColumns = []string{
	"id", "user_id", "first_name", "last_name", "email", "phone_number",
	"linkedin_url", "programming_languages", "technologies", "domains",
	"years_of_experience", "general_description", "photo_content_type",
}

// Repository handles mentor/mentee profile persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// CreateMentor inserts a mentor profile with its photo
func (r *Repository) CreateMentor(ctx context.Context, m *Mentor, photo Photo) error {
	dbMentor := &database.Mentor{
		UserID:               m.UserID,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Email:                m.Email,
		PhoneNumber:          m.PhoneNumber,
		LinkedinURL:          m.LinkedinURL,
		ProgrammingLanguages: m.ProgrammingLanguages,
		Technologies:         m.Technologies,
		Domains:              m.Domains,
		YearsOfExperience:    m.YearsOfExperience,
		GeneralDescription:   m.GeneralDescription,
		Photo:                photo.Data,
		PhotoContentType:     photo.ContentType,
		PhotoFileName:        photo.FileName,
	}

	_, err := r.db.NewInsert().
		Model(dbMentor).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create mentor profile: %w", err)
	}

	m.ID = dbMentor.ID
	m.HasProfilePhoto = len(photo.Data) > 0
	return nil
}

// CreateMentee inserts a mentee profile
func (r *Repository) CreateMentee(ctx context.Context, m *Mentee) error {
	dbMentee := &database.Mentee{
		UserID:             m.UserID,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		PhoneNumber:        m.PhoneNumber,
		GeneralDescription: m.GeneralDescription,
	}

	_, err := r.db.NewInsert().
		Model(dbMentee).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create mentee profile: %w", err)
	}

	m.ID = dbMentee.ID
	return nil
}

// FindByUser resolves the profile variant for an account. Every role is
// handled; an unknown role is a programming error surfaced as such.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID, role user.Role) (Profile, error) {
	switch role {
	case user.RoleMentor:
		dbMentor := new(database.Mentor)
		err := r.db.NewSelect().
			Model(dbMentor).
			Column(mentorListColumns...).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get mentor profile: %w", err)
		}
		return mapDBMentorToModel(dbMentor), nil

	case user.RoleMentee:
		dbMentee := new(database.Mentee)
		err := r.db.NewSelect().
			Model(dbMentee).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("failed to get mentee profile: %w", err)
		}
		return mapDBMenteeToModel(dbMentee), nil

	case user.RoleAdmin:
		// Admins have no profile row
		return &Admin{}, nil

	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// GetMentorByID retrieves a single mentor profile for the details view
func (r *Repository) GetMentorByID(ctx context.Context, id uuid.UUID) (*Mentor, error) {
	dbMentor := new(database.Mentor)
	err := r.db.NewSelect().
		Model(dbMentor).
		Column(mentorListColumns...).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mentor: %w", err)
	}

	return mapDBMentorToModel(dbMentor), nil
}

// ListMentors returns all mentor profiles ordered by name
func (r *Repository) ListMentors(ctx context.Context) ([]*Mentor, error) {
	var dbMentors []*database.Mentor
	err := r.db.NewSelect().
		Model(&dbMentors).
		Column(mentorListColumns...).
		Order("first_name ASC", "last_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", err)
	}

	mentors := make([]*Mentor, 0, len(dbMentors))
	for _, dbm := range dbMentors {
		mentors = append(mentors, mapDBMentorToModel(dbm))
	}
	return mentors, nil
}

// SearchMentors matches the query against names, skills and domains
func (r *Repository) SearchMentors(ctx context.Context, query string) ([]*Mentor, error) {
	pattern := "%" + query + "%"

	var dbMentors []*database.Mentor
	err := r.db.NewSelect().
		Model(&dbMentors).
		Column(mentorListColumns...).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("first_name ILIKE ?", pattern).
				WhereOr("last_name ILIKE ?", pattern).
				WhereOr("general_description ILIKE ?", pattern).
				WhereOr("EXISTS (SELECT 1 FROM unnest(programming_languages) AS pl WHERE pl ILIKE ?)", pattern).
				WhereOr("EXISTS (SELECT 1 FROM unnest(technologies) AS t WHERE t ILIKE ?)", pattern).
				WhereOr("EXISTS (SELECT 1 FROM unnest(domains) AS d WHERE d ILIKE ?)", pattern)
		}).
		Order("first_name ASC", "last_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search mentors: %w", err)
	}

	mentors := make([]*Mentor, 0, len(dbMentors))
	for _, dbm := range dbMentors {
		mentors = append(mentors, mapDBMentorToModel(dbm))
	}
	return mentors, nil
}

// GetMentorPhoto loads the stored photo for a mentor
func (r *Repository) GetMentorPhoto(ctx context.Context, id uuid.UUID) (Photo, error) {
	dbMentor := new(database.Mentor)
	err := r.db.NewSelect().
		Model(dbMentor).
		Column("photo", "photo_content_type", "photo_file_name").
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Photo{}, ErrNotFound
		}
		return Photo{}, fmt.Errorf("failed to get mentor photo: %w", err)
	}

	if len(dbMentor.Photo) == 0 {
		return Photo{}, ErrNotFound
	}

	return Photo{
		Data:        dbMentor.Photo,
		ContentType: dbMentor.PhotoContentType,
		FileName:    dbMentor.PhotoFileName,
	}, nil
}

func mapDBMentorToModel(dbm *database.Mentor) *Mentor {
	return &Mentor{
		ID:                   dbm.ID,
		UserID:               dbm.UserID,
		FirstName:            dbm.FirstName,
		LastName:             dbm.LastName,
		Email:                dbm.Email,
		PhoneNumber:          dbm.PhoneNumber,
		LinkedinURL:          dbm.LinkedinURL,
		ProgrammingLanguages: dbm.ProgrammingLanguages,
		Technologies:         dbm.Technologies,
		Domains:              dbm.Domains,
		YearsOfExperience:    dbm.YearsOfExperience,
		GeneralDescription:   dbm.GeneralDescription,
		HasProfilePhoto:      dbm.PhotoContentType != "",
	}
}

func mapDBMenteeToModel(dbm *database.Mentee) *Mentee {
	return &Mentee{
		ID:                 dbm.ID,
		UserID:             dbm.UserID,
		FirstName:          dbm.FirstName,
		LastName:           dbm.LastName,
		Email:              dbm.Email,
		PhoneNumber:        dbm.PhoneNumber,
		GeneralDescription: dbm.GeneralDescription,
	}
}

package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	maxNameLength     = 150
)

// User represents a registered user of the task manager.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Password       string    `json:"-"` // Plaintext, only set during registration
	HashedPassword string    `json:"-"`
	IsActive       bool      `json:"is_active"`
	IsStaff        bool      `json:"is_staff"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"date_joined"`
	UpdatedAt      time.Time `json:"-"`
}

// NewUser creates an active User with a fresh ID.
// The email is normalized to lower case. The caller is responsible for
// hashing the password before the user is stored.
func NewUser(email, password, firstName, lastName string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Password:  password,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	var errs ValidationErrors

	if u.ID == uuid.Nil {
		errs = append(errs, NewValidationError("id", "cannot be empty", ErrInvalidID))
	}

	switch {
	case u.Email == "":
		errs = append(errs, NewValidationError("email", "This field is required.", ErrValidation))
	case !validEmail(u.Email):
		errs = append(errs, NewValidationError("email", "Enter a valid email address.", ErrInvalidFormat))
	}

	if len(u.FirstName) > maxNameLength {
		errs = append(errs, NewValidationError("first_name", "Ensure this field has no more than 150 characters.", ErrValidation))
	}
	if len(u.LastName) > maxNameLength {
		errs = append(errs, NewValidationError("last_name", "Ensure this field has no more than 150 characters.", ErrValidation))
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			errs = append(errs, NewValidationError("password", "Ensure this field has at least 8 characters.", ErrValidation))
		} else if len(u.Password) > MaxPasswordLength {
			errs = append(errs, NewValidationError("password", "Ensure this field has no more than 72 characters.", ErrValidation))
		}
	} else if u.HashedPassword == "" {
		// Stored users carry a hash instead of the plaintext
		errs = append(errs, NewValidationError("password", "This field is required.", ErrValidation))
	}

	return errs.OrNil()
}

// Profile is the non-sensitive view of a user returned to clients.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// Profile returns the client-safe subset of the user's fields.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

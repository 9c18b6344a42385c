package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxLabelNameLength bounds category and tag names, in characters.
const MaxLabelNameLength = 100

// Category is a flat, named grouping shared by all users.
// The name is its natural key.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategory creates a Category with a fresh ID.
func NewCategory(name string) (*Category, error) {
	name, err := NormalizeLabelName(name)
	if err != nil {
		return nil, err
	}
	return &Category{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}, nil
}

// Tag is a flat label that can be attached to many tasks.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a Tag with a fresh ID.
func NewTag(name string) (*Tag, error) {
	name, err := NormalizeLabelName(name)
	if err != nil {
		return nil, err
	}
	return &Tag{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}, nil
}

// NormalizeLabelName trims name and checks it is usable as a category
// or tag key. Case is preserved.
func NormalizeLabelName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", NewValidationError("name", "This field may not be blank.", ErrValidation)
	case utf8.RuneCountInString(name) > MaxLabelNameLength:
		return "", NewValidationError("name",
			fmt.Sprintf("Ensure this field has no more than %d characters.", MaxLabelNameLength), ErrValidation)
	}
	return name, nil
}

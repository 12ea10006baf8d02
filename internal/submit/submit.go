// Package submit validates feature submissions before they reach the ledger.
package submit

import (
	"errors"
	"strings"

	"github.com/joescharf/votehub/internal/ledger"
	"github.com/joescharf/votehub/internal/models"
)

var (
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyCategory    = errors.New("category is required")
)

// Submission is a feature request as entered by the user.
type Submission struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Status      string `yaml:"status,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Title:       strings.TrimSpace(s.Title),
		Description: strings.TrimSpace(s.Description),
		Category:    strings.TrimSpace(s.Category),
		Status:      strings.TrimSpace(s.Status),
	}
}

// Validate reports the first problem with s. Whitespace-only fields count as empty.
func (s Submission) Validate() error {
	n := s.Normalize()
	switch {
	case n.Title == "":
		return ErrEmptyTitle
	case n.Description == "":
		return ErrEmptyDescription
	case n.Category == "":
		return ErrEmptyCategory
	}
	if n.Status != "" {
		if _, err := models.ParseStatus(n.Status); err != nil {
			return err
		}
	}
	return nil
}

// Feature validates s and converts the normalized result into ledger input.
func (s Submission) Feature() (ledger.NewFeature, error) {
	if err := s.Validate(); err != nil {
		return ledger.NewFeature{}, err
	}
	n := s.Normalize()
	return ledger.NewFeature{
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		Status:      models.FeatureStatus(n.Status),
	}, nil
}

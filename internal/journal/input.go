package journal

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/diary/internal/apperr"
	"github.com/starford/diary/internal/index"
)

const (
	maxTitleLen = 200
	maxBodySize = 8 << 20
)

// EntryInput carries the writable fields of an entry.
type EntryInput struct {
	ID    uuid.UUID // optional on create
	Date  *time.Time
	Title string
	Body  []byte
}

// Validate checks the input and wraps failures in apperr.ErrInvalidInput.
func (in *EntryInput) Validate() error {
	err := validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&in.Body, validation.Length(0, maxBodySize)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if in.Date != nil {
		return validateDate(*in.Date)
	}
	return nil
}

// ListOptions selects a page of entries.
type ListOptions struct {
	Sort   string
	Query  string
	Limit  int
	Offset int
}

// Validate checks the options and wraps failures in apperr.ErrInvalidInput.
func (o *ListOptions) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.Sort, validation.In(index.SortLatest, index.SortOldest)),
		validation.Field(&o.Limit, validation.Min(0), validation.Max(500)),
		validation.Field(&o.Offset, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

var errDateRange = errors.New("date: year must be between 1 and 9999")

func validateDate(t time.Time) error {
	if t.IsZero() {
		return fmt.Errorf("%w: date is required", apperr.ErrInvalidInput)
	}
	if y := t.Year(); y < 1 || y > 9999 {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, errDateRange)
	}
	return nil
}

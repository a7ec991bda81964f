package api

import (
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/starford/diary/internal/calendar"
	"github.com/starford/diary/internal/journal"
)

// Body encodings used on the wire.
const (
	EncodingText   = "text"
	EncodingBase64 = "base64"
)

// EntryRequest is the request body for creating or updating an entry.
// Date is optional: creation defaults to now, updates keep the current date.
type EntryRequest struct {
	ID       string     `json:"id,omitempty" example:"6f1c2b9e-4d5a-4c3b-9a8e-1f2d3c4b5a69"`
	Date     *time.Time `json:"date,omitempty"`
	Title    string     `json:"title" example:"Rainy evening"`
	Body     string     `json:"body" example:"Walked home in the rain."`
	Encoding string     `json:"encoding,omitempty" example:"text" enums:"text,base64"`
}

// input converts the request into service input.
func (req *EntryRequest) input() (journal.EntryInput, error) {
	in := journal.EntryInput{Date: req.Date, Title: req.Title}
	if req.ID != "" {
		id, err := uuid.Parse(req.ID)
		if err != nil {
			return in, fmt.Errorf("invalid id %q", req.ID)
		}
		in.ID = id
	}
	switch req.Encoding {
	case "", EncodingText:
		in.Body = []byte(req.Body)
	case EncodingBase64:
		raw, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return in, fmt.Errorf("body is not valid base64")
		}
		in.Body = raw
	default:
		return in, fmt.Errorf("unknown encoding %q", req.Encoding)
	}
	return in, nil
}

// EntryResponse is the full entry response type.
type EntryResponse struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Encoding string    `json:"encoding" enums:"text,base64"`
	Tags     []string  `json:"tags"`
	Checksum string    `json:"checksum" validate:"required"`
}

func entryResponse(d *journal.Detail) EntryResponse {
	resp := EntryResponse{
		ID:       d.ID,
		Date:     d.Date,
		Title:    d.Title,
		Encoding: EncodingText,
		Tags:     d.Tags,
		Checksum: d.Checksum,
	}
	if utf8.Valid(d.Body) {
		resp.Body = string(d.Body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(d.Body)
		resp.Encoding = EncodingBase64
	}
	return resp
}

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []journal.Summary `json:"entries" validate:"required"`
	Total   int               `json:"total" example:"42" validate:"required"`
}

// CalendarResponse is a month grid plus the layout hints for the client's
// size class.
type CalendarResponse struct {
	Month  *journal.MonthView `json:"month" validate:"required"`
	Layout calendar.Layout    `json:"layout" validate:"required"`
}

// NavigateResponse is the month reached by a navigation step.
type NavigateResponse struct {
	Month string    `json:"month" example:"2024-04" validate:"required"`
	Start time.Time `json:"start" validate:"required"`
}

// DayResponse lists the entries dated on one day.
type DayResponse struct {
	Date    string            `json:"date" example:"2024-03-05" validate:"required"`
	Entries []journal.Summary `json:"entries" validate:"required"`
}

// AccountResponse describes the account state.
type AccountResponse struct {
	Username    string `json:"username" example:"ada"`
	FirstLaunch bool   `json:"first_launch"`
}

// AccountRequest is the request body for setting up or changing the account.
// On update an empty password keeps the current one.
type AccountRequest struct {
	Username string `json:"username" example:"ada" validate:"required"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// AccountUpdateResponse reports whether an update changed anything.
type AccountUpdateResponse struct {
	Changed bool `json:"changed"`
}

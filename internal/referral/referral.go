package referral

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// CookieName is the cookie that carries the referral slug on the client.
const CookieName = "ref"

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidSlug reports whether s can be used as a referral slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Click is a single followed referral link.
type Click struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	At        time.Time `json:"at"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

// Recorder stores referral clicks.
type Recorder interface {
	Record(ctx context.Context, click Click) error
}

// MultiRecorder records to every recorder and joins their errors.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(ctx context.Context, click Click) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, click); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

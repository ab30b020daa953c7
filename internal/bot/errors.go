package bot

import (
	"errors"

	"github.com/couchcryptid/chat-utility-bot/internal/domain"
)

// ErrLocationRequired means neither a location nor a saved default was available.
var ErrLocationRequired = errors.New("no location given and none saved")

// ReplyError carries the user-facing text for a failed command alongside the
// error that caused it.
type ReplyError struct {
	Reply string
	Err   error
}

func (e *ReplyError) Error() string { return e.Reply + ": " + e.Err.Error() }

func (e *ReplyError) Unwrap() error { return e.Err }

func fail(reply string, err error) error {
	return &ReplyError{Reply: reply, Err: err}
}

// ReplyFor returns the user-facing text for err, falling back to a generic
// message for errors that did not come from a handler.
func ReplyFor(err error) string {
	var re *ReplyError
	if errors.As(err, &re) {
		return re.Reply
	}
	return "🚫 Something went wrong, please try again later"
}

// causeOf names the failure category of a fetch error for display.
func causeOf(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return string(fe.Cause)
	}
	return "unexpected error"
}

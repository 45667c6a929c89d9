package domain

import "errors"

var (
	// ErrActivityNotFound is returned when the named activity is not in the directory.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered indicates the email is already on the activity roster.
	ErrAlreadyRegistered = errors.New("student already signed up for this activity")
	// ErrNotRegistered indicates the email is not on the activity roster.
	ErrNotRegistered = errors.New("student not registered for this activity")
)

// Activity is a named extracurricular offering with a capacity and an ordered roster.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	// Participants holds roster emails in signup order. An email appears at
	// most once per activity; the same email may join several activities.
	Participants []string
}

// Clone returns a copy whose roster slice is independent of the receiver's.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = append([]string(nil), a.Participants...)
	return out
}

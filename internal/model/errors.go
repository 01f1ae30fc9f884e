package model

import (
	"errors"
	"strings"
)

// ErrMalformed is matched by every MalformedError.
var ErrMalformed = errors.New("malformed declaration")

// MalformedError reports a declaration that violates a structural
// precondition. File, Type and Member are filled in as far as known.
type MalformedError struct {
	File   string
	Type   string
	Member string
	Reason string
}

func (e *MalformedError) Error() string {
	var where []string
	if e.File != "" {
		where = append(where, e.File)
	}
	if e.Type != "" {
		name := e.Type
		if e.Member != "" {
			name += "." + e.Member
		}
		where = append(where, name)
	}
	msg := ErrMalformed.Error()
	if len(where) > 0 {
		msg = strings.Join(where, ": ") + ": " + msg
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is makes errors.Is(err, ErrMalformed) hold for any MalformedError.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

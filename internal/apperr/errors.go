package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNoJournal     = errors.New("no lab-journal found, run `lab-journal init <path>` first")
)

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired     = errors.New("password not accepted yet")
	ErrValidation       = errors.New("invalid input")
	ErrExternalService  = errors.New("external service failed")
	ErrConfiguration    = errors.New("configuration error")
	ErrTemplateNotFound = fmt.Errorf("%w: template sheet not found", ErrConfiguration)
	ErrDuplicateSheet   = errors.New("sheet with this name already exists")
	ErrIncompleteRecord = errors.New("record has missing required fields")
	ErrProjectRequired  = errors.New("no project selected")
	ErrEmptyProjectName = fmt.Errorf("%w: project name is empty", ErrValidation)
)

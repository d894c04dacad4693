package models

import "errors"

// Failure classes surfaced by a run. Callers match them with errors.Is.
var (
	ErrConfig     = errors.New("invalid configuration")
	ErrTransport  = errors.New("request failed")
	ErrParse      = errors.New("malformed response")
	ErrFilesystem = errors.New("filesystem error")
	ErrRender     = errors.New("chart rendering failed")
)

package domain

import "errors"

var (
	ErrInvalidFormat       = errors.New("invalid url format")
	ErrEmptyInput          = errors.New("empty input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUpstream            = errors.New("generation service error")
	ErrUnknownTask         = errors.New("unknown task")
)

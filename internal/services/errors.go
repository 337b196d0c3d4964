package services

import "errors"

// Pipeline failure conditions. Stage errors wrap one of these so callers can
// match with errors.Is.
var (
	ErrInvalidInputFormat = errors.New("invalid input format")
	ErrEmptyDocument      = errors.New("no text could be extracted from the document")
	ErrParseFailure       = errors.New("failed to parse PDF")
	ErrEmbeddingFailure   = errors.New("embedding failed")
	ErrCompletionFailure  = errors.New("completion failed")
	ErrSchemaParseFailure = errors.New("model response does not match the output schema")
)

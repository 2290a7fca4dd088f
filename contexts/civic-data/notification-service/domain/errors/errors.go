package errors

import "errors"

var (
	// ErrLastSentNotFound reports a missing watermark row.
	ErrLastSentNotFound = errors.New("last sent watermark not found")

	// ErrTemplateNotFound reports that neither the specific template nor any
	// of its fallbacks could be resolved.
	ErrTemplateNotFound = errors.New("digest template not found")
)

package tui

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")

// ErrMissingResourceService is returned when the resource service is not provided.
var ErrMissingResourceService = errors.New("tui: resource service is required")

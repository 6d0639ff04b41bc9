package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDataUnavailable    = errors.New("DATA_UNAVAILABLE")
	ErrEmptyDataset       = errors.New("EMPTY_DATASET")
	ErrInvalidArgument    = errors.New("INVALID_ARGUMENT")
	ErrBackendUnavailable = errors.New("BACKEND_UNAVAILABLE")
)

// ValidationErrors maps a field name to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid application: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidArgument
}

package models

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ValidationError reports invalid task input, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if msg := e.First(); msg != "" {
		return msg
	}
	return "validation failed"
}

// First returns the message of the first failing field, title before description.
func (e *ValidationError) First() string {
	for _, f := range []string{"title", "description"} {
		if msg, ok := e.Fields[f]; ok {
			return msg
		}
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return e.Fields[keys[0]]
}

// ValidateNewTask checks title and description against the task limits.
// It returns nil or a *ValidationError.
func ValidateNewTask(title, description string) error {
	fields := map[string]string{}

	switch {
	case strings.TrimSpace(title) == "":
		fields["title"] = "Title cannot be empty"
	case utf8.RuneCountInString(title) > MaxTitleLength:
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", MaxTitleLength)
	}

	switch {
	case strings.TrimSpace(description) == "":
		fields["description"] = "Description cannot be empty"
	case utf8.RuneCountInString(description) > MaxDescriptionLength:
		fields["description"] = fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength)
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

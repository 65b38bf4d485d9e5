package hubcache

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyFormat marks a template whose placeholders do not match the supplied arguments.
	ErrKeyFormat = errors.New("hubcache: key format")
	// ErrParameterConversion marks a key argument that could not be turned into a stable key fragment.
	ErrParameterConversion = errors.New("hubcache: parameter conversion")
)

// KeyFormatError is returned when a key or prefix template cannot be formatted.
// It is always a call-site bug and never worth retrying.
type KeyFormatError struct {
	Template string
	Pos      int // byte offset in Template
	Index    int // placeholder index, -1 when the template itself is malformed
	Args     int
}

func (e *KeyFormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("hubcache: malformed template %q at offset %d", e.Template, e.Pos)
	}
	return fmt.Sprintf("hubcache: template %q references {%d} but only %d argument(s) supplied",
		e.Template, e.Index, e.Args)
}

func (e *KeyFormatError) Unwrap() error { return ErrKeyFormat }

// ParameterConversionError is returned when a filter or other complex argument
// cannot be canonically serialized for hashing.
type ParameterConversionError struct {
	Type string
	Err  error
}

func (e *ParameterConversionError) Error() string {
	return fmt.Sprintf("hubcache: cannot convert %s to key parameter: %v", e.Type, e.Err)
}

func (e *ParameterConversionError) Unwrap() []error {
	return []error{ErrParameterConversion, e.Err}
}

// InvalidateError reports a failed removal of one storage key.
type InvalidateError struct {
	Key     string
	BumpErr error
	DelErr  error
}

func (e *InvalidateError) Error() string {
	switch {
	case e.BumpErr != nil && e.DelErr != nil:
		return fmt.Sprintf("invalidate %q failed: gen bump and delete failed: bump=%v; delete=%v",
			e.Key, e.BumpErr, e.DelErr)
	case e.BumpErr != nil:
		return fmt.Sprintf("invalidate %q: gen bump failed: %v", e.Key, e.BumpErr)
	case e.DelErr != nil:
		return fmt.Sprintf("invalidate %q: delete failed: %v", e.Key, e.DelErr)
	default:
		return fmt.Sprintf("invalidate %q: unknown error", e.Key)
	}
}

func (e *InvalidateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.BumpErr != nil {
		errs = append(errs, e.BumpErr)
	}
	if e.DelErr != nil {
		errs = append(errs, e.DelErr)
	}
	return errs
}

// InvalidationError is what a consumer records when one of its removals fails.
// Target is the key or prefix template that could not be removed.
type InvalidationError struct {
	Entity string
	Event  EventType
	Target string
	Err    error
}

func (e *InvalidationError) Error() string {
	return fmt.Sprintf("hubcache: %s %s: invalidate %q: %v", e.Entity, e.Event, e.Target, e.Err)
}

func (e *InvalidationError) Unwrap() error { return e.Err }

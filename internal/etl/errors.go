package etl

import (
	"errors"
	"fmt"
)

// Kind classifies a failed run so the CLI can pick an exit code.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindSource
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindSource:
		return "source"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Error wraps a failure with the stage it happened in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func ConfigError(op string, err error) error { return &Error{Kind: KindConfig, Op: op, Err: err} }
func SourceError(op string, err error) error { return &Error{Kind: KindSource, Op: op, Err: err} }
func SinkError(op string, err error) error   { return &Error{Kind: KindSink, Op: op, Err: err} }

// ExitCode maps err to the process exit status: 0 on success, 1 for config and
// usage errors, 2 for source failures, 3 for sink failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindSource:
			return 2
		case KindSink:
			return 3
		}
	}
	return 1
}

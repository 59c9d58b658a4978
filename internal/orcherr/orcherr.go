// Package orcherr defines Orchestra's error taxonomy. Most errors that
// cross a package boundary carry one of these kinds, wrapped with enough
// context (path, hint) for the CLI and the daemon's socket protocol to
// report it without inspecting error strings.
package orcherr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an Error, independent of its message.
type Kind string

const (
	// KindIO covers filesystem read/write/rename/fsync failures.
	KindIO Kind = "io"
	// KindRegistryParse covers YAML parse failures in the registry tree.
	KindRegistryParse Kind = "registry_parse"
	// KindRegistryIntegrity covers structurally valid YAML that violates
	// registry invariants (duplicate codebase names, dangling project
	// references, a path escaping its codebase root).
	KindRegistryIntegrity Kind = "registry_integrity"
	// KindRender covers template rendering failures.
	KindRender Kind = "render"
	// KindHash covers hash computation or hash-store (de)serialization
	// failures.
	KindHash Kind = "hash"
	// KindSync covers render-hash-write pipeline failures.
	KindSync Kind = "sync"
	// KindProtocol covers malformed or unrecognized socket requests.
	KindProtocol Kind = "protocol"
	// KindDaemonNotRunning is returned by client helpers when no daemon
	// answers at the configured socket.
	KindDaemonNotRunning Kind = "daemon_not_running"
	// KindChannelClosed covers a reply channel closed before a waiting
	// caller received its response (daemon shutdown mid-request).
	KindChannelClosed Kind = "channel_closed"
	// KindLaunchd covers service-manager integration failures: macOS
	// launchd, Linux systemd, and Windows service managers all surface
	// through this one kind.
	KindLaunchd Kind = "launchd"
)

// Error is Orchestra's structured error type. Path and Hint are optional;
// zero values are omitted from Error().
type Error struct {
	Kind Kind
	Path string
	Hint string
	Err  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap annotates err with a kind, producing an *Error unless err is nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// WrapPath annotates err with a kind and a path.
func WrapPath(kind Kind, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

// WrapHint annotates err with a kind, a path, and a best-effort hint
// (e.g. a YAML parse line number).
func WrapHint(kind Kind, path, hint string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Hint: hint, Err: err}
}

// Is reports whether err (or any error it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// Fmt wraps err with a kind and a formatted message, mirroring
// fmt.Errorf's %w handling.
func Fmt(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

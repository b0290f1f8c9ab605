package domain

import (
	stderrors "errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrSnapshotNotFound is returned by state stores when a conversation has no persisted state.
var ErrSnapshotNotFound = stderrors.New("snapshot not found")

// ErrUserNotFound is returned by user directories that signal absence with an error.
var ErrUserNotFound = stderrors.New("user not found")

const (
	CodeUnknownDialog           = "UNKNOWN_DIALOG"
	CodeDuplicateDialog         = "DUPLICATE_DIALOG"
	CodeNoActiveDialog          = "NO_ACTIVE_DIALOG"
	CodeCorruptDialogState      = "CORRUPT_DIALOG_STATE"
	CodePersistence             = "PERSISTENCE_FAILURE"
	CodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	CodeInvalidActivity         = "INVALID_ACTIVITY"
	CodeInvalidDialog           = "INVALID_DIALOG"
)

var (
	ErrUnknownDialog = goerrors.New("unknown dialog", goerrors.CategoryBadInput).
				WithTextCode(CodeUnknownDialog)
	ErrDuplicateDialog = goerrors.New("dialog already registered", goerrors.CategoryConflict).
				WithTextCode(CodeDuplicateDialog)
	ErrNoActiveDialog = goerrors.New("no active dialog", goerrors.CategoryBadInput).
				WithTextCode(CodeNoActiveDialog)
	ErrCorruptDialogState = goerrors.New("corrupt dialog state", goerrors.CategoryValidation).
				WithTextCode(CodeCorruptDialogState)
	ErrPersistence = goerrors.New("conversation state persistence failed", goerrors.CategoryExternal).
			WithTextCode(CodePersistence)
	ErrCollaboratorUnavailable = goerrors.New("collaborator unavailable", goerrors.CategoryExternal).
					WithTextCode(CodeCollaboratorUnavailable)
	ErrInvalidActivity = goerrors.New("invalid activity", goerrors.CategoryBadInput).
				WithTextCode(CodeInvalidActivity)
	ErrInvalidDialog = goerrors.New("invalid dialog definition", goerrors.CategoryBadInput).
				WithTextCode(CodeInvalidDialog)
)

// NewError clones one of the taxonomy errors, attaching a message, a cause and metadata.
func NewError(base *goerrors.Error, message string, source error, metadata map[string]any) *goerrors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if source != nil {
		err.Source = source
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// UnknownDialog reports a begin request for an unregistered dialog id.
func UnknownDialog(dialogID string) error {
	return NewError(ErrUnknownDialog, "unknown dialog: "+dialogID, nil, map[string]any{"dialog_id": dialogID})
}

// DuplicateDialog reports a second registration under the same id.
func DuplicateDialog(dialogID string) error {
	return NewError(ErrDuplicateDialog, "dialog already registered: "+dialogID, nil, map[string]any{"dialog_id": dialogID})
}

// NoActiveDialog reports a continue request on an empty stack.
func NoActiveDialog() error {
	return NewError(ErrNoActiveDialog, "", nil, nil)
}

// CorruptDialogState reports a persisted frame the engine cannot resume.
func CorruptDialogState(frame Frame, reason string) error {
	return NewError(ErrCorruptDialogState, "corrupt dialog state: "+reason, nil, map[string]any{
		"dialog_id":  frame.DialogID,
		"step_index": frame.StepIndex,
	})
}

// Persistence wraps a state backend failure.
func Persistence(op, key string, source error) error {
	return NewError(ErrPersistence, "conversation state "+op+" failed", source, map[string]any{
		"operation":    op,
		"conversation": key,
	})
}

// CollaboratorUnavailable wraps a failure of an external collaborator.
func CollaboratorUnavailable(collaborator, op string, source error) error {
	return NewError(ErrCollaboratorUnavailable, collaborator+" "+op+" failed", source, map[string]any{
		"collaborator": collaborator,
		"operation":    op,
	})
}

// Code returns the text code of the outermost taxonomy error in the chain.
func Code(err error) string {
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// IsCode reports whether err carries the given text code.
func IsCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

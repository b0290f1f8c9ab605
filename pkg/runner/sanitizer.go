package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxMessageBytes bounds one console message.
	DefaultMaxMessageBytes = 4096
	// EnvMaxInputSize overrides DefaultMaxMessageBytes.
	EnvMaxInputSize = "COLLOQUY_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("message exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("message contains invalid UTF-8 sequences")
)

// InputPolicy decides what the console accepts as one user message before
// it becomes the text of an activity.
type InputPolicy struct {
	// MaxBytes rejects longer messages. Zero means DefaultMaxMessageBytes.
	MaxBytes int
}

// DefaultInputPolicy reads the size limit from EnvMaxInputSize.
func DefaultInputPolicy() InputPolicy {
	p := InputPolicy{MaxBytes: DefaultMaxMessageBytes}
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			p.MaxBytes = size
		}
	}
	return p
}

// Clean trims the message and drops control characters other than newline
// and tab. Oversized messages are rejected, never cut, since a truncated
// answer to a registration prompt would be stored as the user's name.
func (p InputPolicy) Clean(message string) (string, error) {
	limit := p.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxMessageBytes
	}
	if len(message) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(message), limit)
	}
	if !utf8.ValidString(message) {
		return "", ErrInvalidUTF8
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == '\r' || (unicode.IsControl(r) && r != '\n' && r != '\t') {
			return -1
		}
		return r
	}, message)
	return strings.TrimSpace(cleaned), nil
}

// SanitizeInput cleans a message with DefaultInputPolicy.
func SanitizeInput(message string) (string, error) {
	return DefaultInputPolicy().Clean(message)
}

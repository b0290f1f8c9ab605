package dialog

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	valuePrompt  = "prompt"
	valueRetry   = "retry"
	valueMax     = "max_length"
	valueTooLong = "too_long"
)

// PromptOptions configures a TextPrompt. A plain string argument is taken as Text.
type PromptOptions struct {
	Text string
	// RetryText is sent on blank input. Defaults to Text.
	RetryText string
	// MaxLength caps the answer in characters. Zero means no cap.
	MaxLength int
	// TooLongText is sent when the answer exceeds MaxLength. Defaults to RetryText.
	TooLongText string
}

// TextPrompt asks for free text and completes with the trimmed answer.
type TextPrompt struct{}

// NewTextPrompt creates a text prompt dialog.
func NewTextPrompt() *TextPrompt {
	return &TextPrompt{}
}

func (p *TextPrompt) Begin(ctx context.Context, dc *Context, args any) (Result, error) {
	var opts PromptOptions
	switch v := args.(type) {
	case PromptOptions:
		opts = v
	case *PromptOptions:
		if v != nil {
			opts = *v
		}
	case string:
		opts.Text = v
	case nil:
	default:
		return Result{}, fmt.Errorf("text prompt: unsupported options %T", args)
	}
	if opts.RetryText == "" {
		opts.RetryText = opts.Text
	}
	if opts.TooLongText == "" {
		opts.TooLongText = opts.RetryText
	}

	frame := dc.Frame()
	frame.Values[valuePrompt] = opts.Text
	frame.Values[valueRetry] = opts.RetryText
	if opts.MaxLength > 0 {
		frame.Values[valueMax] = opts.MaxLength
		frame.Values[valueTooLong] = opts.TooLongText
	}

	if opts.Text != "" {
		dc.Turn().SendText(opts.Text)
	}
	return Waiting(), nil
}

func (p *TextPrompt) Resume(ctx context.Context, dc *Context, input any) (Result, error) {
	text, _ := input.(string)
	text = strings.TrimSpace(text)
	frame := dc.Frame()

	if limit := intValue(frame.Values[valueMax]); limit > 0 && utf8.RuneCountInString(text) > limit {
		if msg, _ := frame.Values[valueTooLong].(string); msg != "" {
			dc.Turn().SendText(msg)
		}
		return Waiting(), nil
	}
	if text != "" {
		return Completed(text), nil
	}

	if retry, _ := frame.Values[valueRetry].(string); retry != "" {
		dc.Turn().SendText(retry)
	}
	return Waiting(), nil
}

// Frame values come back from JSON backends as float64.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

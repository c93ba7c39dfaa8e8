package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCharacter reports a disallowed or malformed codepoint in strict mode.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrDecodeFailure reports a malformed ACE label. Callers recover by keeping
	// the original ACE text.
	ErrDecodeFailure = errors.New("ace decode failure")
	// ErrLengthExceeded reports a label or domain over the DNS length limits.
	// It matches ErrInvalidCharacter with errors.Is.
	ErrLengthExceeded = fmt.Errorf("%w: length exceeded", ErrInvalidCharacter)
)

const (
	// MaxLabelLength is the longest DNS label in octets.
	MaxLabelLength = 63
	// MaxDomainLength is the longest DNS name in octets, without the trailing dot.
	MaxDomainLength = 253
)

// Package ace converts single DNS labels between Unicode and the ASCII
// Compatible Encoding: punycode behind the "xn--" prefix.
package ace

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
)

// Codec encodes and decodes one label at a time. It never sees a dotted
// domain; splitting is the normalizer's job.
type Codec interface {
	// EncodeLabel returns the ACE form of a Unicode label. ASCII labels are
	// returned unchanged.
	EncodeLabel(label string) (string, error)

	// DecodeLabel returns the Unicode form of an ACE label. ok is false when
	// the label has no ACE prefix, in which case it is returned unchanged.
	DecodeLabel(label string) (out string, ok bool, err error)
}

type punyCodec struct {
	logger log.Logger
}

// NewCodec returns the punycode Codec.
func NewCodec(logger log.Logger) Codec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &punyCodec{logger: logger}
}

func (c *punyCodec) EncodeLabel(label string) (string, error) {
	if domain.IsASCII(label) {
		return label, nil
	}
	enc, err := Encode(label)
	if err != nil {
		c.logger.Debug(map[string]any{"label": label, "error": err.Error()}, "ace_encode_failed")
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidCharacter, err)
	}
	out := domain.ACEPrefix + enc
	if len(out) > domain.MaxLabelLength {
		return "", fmt.Errorf("%w: %d octets", domain.ErrLengthExceeded, len(out))
	}
	return out, nil
}

func (c *punyCodec) DecodeLabel(label string) (string, bool, error) {
	if !domain.HasACEPrefix(label) {
		return label, false, nil
	}
	out, err := decodeLabel(label)
	if err != nil {
		c.logger.Debug(map[string]any{"label": label, "error": err.Error()}, "ace_decode_failed")
		return "", true, err
	}
	return out, true, nil
}

// decodeLabel applies the RFC 3490 ToUnicode checks around Decode: the
// result must be non-empty, not pure ASCII, NFC normalized, and must
// re-encode to the same ACE text.
func decodeLabel(label string) (string, error) {
	if len(label) > domain.MaxLabelLength {
		return "", fmt.Errorf("%w: label exceeds %d octets", domain.ErrDecodeFailure, domain.MaxLabelLength)
	}
	if !domain.IsASCII(label) {
		return "", fmt.Errorf("%w: non-ascii ace label", domain.ErrDecodeFailure)
	}
	payload := strings.ToLower(label[len(domain.ACEPrefix):])
	if payload == "" {
		return "", fmt.Errorf("%w: empty payload", domain.ErrDecodeFailure)
	}
	out, err := Decode(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)
	}
	if out == "" || domain.IsASCII(out) {
		return "", fmt.Errorf("%w: payload decodes to ascii", domain.ErrDecodeFailure)
	}
	if !norm.NFC.IsNormalString(out) {
		return "", fmt.Errorf("%w: result is not NFC", domain.ErrDecodeFailure)
	}
	again, err := Encode(out)
	if err != nil || again != payload {
		return "", fmt.Errorf("%w: payload does not round-trip", domain.ErrDecodeFailure)
	}
	return out, nil
}

package idn

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/haukened/rr-idn/internal/idn/common/utils"
	"github.com/haukened/rr-idn/internal/idn/domain"
)

// UTF8ToACE converts every label that is not display-appropriate for mode
// into ACE. ForDNS converts all non-ASCII labels and fails on any invalid
// character; ForUI leaves safe labels in Unicode; IgnoreErrors converts all
// non-ASCII labels and never fails on content.
func (s *Service) UTF8ToACE(input string, mode domain.StringPrepMode) (string, error) {
	cfg := s.snapshot()
	d := domain.SplitDomain(domain.NormalizeFullStops(input))
	tld := s.scopeTLD(d.TLD())
	for i := range d.Labels {
		out, err := s.labelToACE(cfg, d.Labels[i].Raw, mode, tld)
		if err != nil {
			return "", err
		}
		d.Labels[i].ACE = out
	}
	out := d.ACE()
	if mode == domain.ForDNS {
		if n := len(strings.TrimSuffix(out, ".")); n > domain.MaxDomainLength {
			return "", fmt.Errorf("%w: domain is %d octets", domain.ErrLengthExceeded, n)
		}
	}
	return out, nil
}

func (s *Service) labelToACE(cfg *snapshot, label string, mode domain.StringPrepMode, tld string) (string, error) {
	if domain.IsASCII(label) {
		if mode != domain.ForDNS {
			return label, nil
		}
		if len(label) > domain.MaxLabelLength {
			return "", fmt.Errorf("%w: label %q is %d octets", domain.ErrLengthExceeded, label, len(label))
		}
		if domain.HasACEPrefix(label) {
			if _, err := s.decodeLabel(label); err != nil {
				return "", fmt.Errorf("%w: %q: %v", domain.ErrInvalidCharacter, label, err)
			}
		}
		return label, nil
	}

	prepped, ok, err := stringPrep(label, mode)
	if err != nil {
		return "", err
	}
	if domain.IsASCII(prepped) {
		return prepped, nil
	}
	if mode == domain.ForUI && ok && cfg.isLabelSafe(prepped, tld) {
		return prepped, nil
	}
	return s.codec.EncodeLabel(prepped)
}

// ACEToUTF8 decodes the ACE labels of input. Labels that fail to decode are
// kept in ACE; under ForUI so are labels that are not safe to display. tld
// selects the blocklist scope and defaults to the last label of input.
// Only ForDNS reports errors, for labels or domains over the DNS limits.
func (s *Service) ACEToUTF8(input string, mode domain.StringPrepMode, tld string) (string, error) {
	cfg := s.snapshot()
	d := domain.SplitDomain(domain.NormalizeFullStops(input))
	if tld == "" {
		tld = d.TLD()
	}
	tld = s.scopeTLD(tld)

	if mode == domain.ForDNS {
		if n := len(strings.TrimSuffix(d.String(), ".")); n > domain.MaxDomainLength {
			return "", fmt.Errorf("%w: domain is %d octets", domain.ErrLengthExceeded, n)
		}
	}
	for i := range d.Labels {
		raw := d.Labels[i].Raw
		if mode == domain.ForDNS && len(raw) > domain.MaxLabelLength {
			return "", fmt.Errorf("%w: label %q is %d octets", domain.ErrLengthExceeded, raw, len(raw))
		}
		d.Labels[i].Unicode = s.labelToUnicode(cfg, d.Labels[i], mode, tld)
	}
	return d.Unicode(), nil
}

func (s *Service) labelToUnicode(cfg *snapshot, l domain.Label, mode domain.StringPrepMode, tld string) string {
	if !l.IsPunycode {
		return l.Raw
	}
	out, err := s.decodeLabel(l.Raw)
	if err != nil {
		return l.Raw
	}
	if mode == domain.ForUI && !cfg.isLabelSafe(out, tld) {
		return l.Raw
	}
	return out
}

// decodeLabel decodes an ACE label and requires the result to be a label
// that UTS 46 maps to itself, so decoding never yields text that encoding
// would not have produced.
func (s *Service) decodeLabel(label string) (string, error) {
	out, _, err := s.codec.DecodeLabel(label)
	if err != nil {
		return "", err
	}
	prepped, _, err := stringPrep(out, domain.ForDNS)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecodeFailure, err)
	}
	if prepped != out {
		return "", fmt.Errorf("%w: %q is not in mapped form", domain.ErrDecodeFailure, out)
	}
	return out, nil
}

// Normalize canonicalizes input: a strict conversion to ACE followed by a
// lenient conversion back.
func (s *Service) Normalize(input string) (string, error) {
	ace, err := s.UTF8ToACE(input, domain.ForDNS)
	if err != nil {
		return "", err
	}
	return s.ACEToUTF8(ace, domain.IgnoreErrors, "")
}

// IsASCII reports whether input needs no conversion at all.
func (s *Service) IsASCII(input string) bool { return domain.IsASCII(input) }

// IsACE reports whether any label of input carries the ACE prefix.
func (s *Service) IsACE(input string) bool {
	for _, l := range domain.SplitDomain(domain.NormalizeFullStops(input)).Labels {
		if l.IsPunycode {
			return true
		}
	}
	return false
}

// ConvertToDisplay returns the form of input a user should see: safe
// labels in Unicode, everything else in ACE, or everything in ACE when
// network.IDN_show_punycode is set. isASCII reports whether the result is
// pure ASCII.
func (s *Service) ConvertToDisplay(input string) (out string, isASCII bool, err error) {
	cfg := s.snapshot()
	if domain.IsASCII(input) {
		out = strings.ToLower(input)
		if cfg.showPunycode || !s.IsACE(out) {
			return out, true, nil
		}
		if out, err = s.ACEToUTF8(out, domain.ForUI, ""); err != nil {
			return "", false, err
		}
		return out, domain.IsASCII(out), nil
	}

	out = input
	if s.IsACE(out) {
		if out, err = s.ACEToUTF8(out, domain.IgnoreErrors, ""); err != nil {
			return "", false, err
		}
	}
	if normalized, nerr := s.Normalize(out); nerr == nil {
		out = normalized
	} else {
		out = norm.NFC.String(out)
	}
	mode := domain.ForUI
	if cfg.showPunycode {
		mode = domain.IgnoreErrors
	}
	if out, err = s.UTF8ToACE(out, mode); err != nil {
		return "", false, err
	}
	return out, domain.IsASCII(out), nil
}

// scopeTLD converts a TLD to the lower-case ACE form blocklist scopes use.
// A full host name is reduced to its last label. A TLD that cannot be
// encoded is compared lower-cased as given.
func (s *Service) scopeTLD(tld string) string {
	tld = utils.TopLevelDomain(tld)
	if domain.IsASCII(tld) {
		return tld
	}
	prepped, _, _ := stringPrep(tld, domain.IgnoreErrors)
	ace, err := s.codec.EncodeLabel(prepped)
	if err != nil {
		return tld
	}
	return strings.ToLower(ace)
}

func (s *Service) encodeScopeTLD(tld string) (string, error) { return s.scopeTLD(tld), nil }

package parsers

import (
	"bufio"
	"io"
	"strings"

	logpkg "github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
)

// ParsePlainList parses a newline-delimited list of blocklist ranges.
// Each line is "<range> [scope]":
//
//	U+2000..U+200B
//	U+00FE except:is,fo   # thorn
//	U+4E00 only:com
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Skips empty lines and lines that do not parse, logging them at debug
// - De-duplicates identical entries while preserving first-seen order
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger) ([]domain.BlocklistRange, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.BlocklistRange, 0, 64)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		s := strings.TrimSpace(line)
		if s == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty")
			continue
		}

		rng, err := parseRangeLine(s)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "raw": s, "error": err.Error()}, "skip_invalid_range")
			continue
		}
		key := rng.String()
		if _, ok := seen[key]; ok {
			logger.Debug(map[string]any{"line": lineNum, "range": key}, "skip_duplicate")
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rng)
		logger.Debug(map[string]any{"line": lineNum, "range": key}, "emit_range")
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}

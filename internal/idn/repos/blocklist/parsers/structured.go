package parsers

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"

	logpkg "github.com/haukened/rr-idn/internal/idn/common/log"
	"github.com/haukened/rr-idn/internal/idn/domain"
)

// structuredKey is the top-level key holding the range list.
const structuredKey = "blocklist"

// ParserFor returns the koanf parser for a structured file extension, or
// nil if the extension is not YAML, JSON or TOML.
func ParserFor(ext string) koanf.Parser {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	case ".toml":
		return toml.Parser()
	default:
		return nil
	}
}

// ParseStructuredFile loads a YAML, JSON or TOML blocklist. The file holds
// a "blocklist" list whose items are either strings in the plain-list line
// syntax or tables:
//
//	blocklist:
//	  - "U+2000..U+200B"
//	  - range: U+00FE
//	    scope: except
//	    tlds: [is, fo]
//
// Unlike the plain list, an invalid entry fails the whole file.
func ParseStructuredFile(path string, parser koanf.Parser, logger logpkg.Logger) ([]domain.BlocklistRange, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load blocklist file %s: %w", path, err)
	}
	raw, ok := k.Get(structuredKey).([]any)
	if !ok {
		return nil, fmt.Errorf("blocklist file %s missing '%s' list", path, structuredKey)
	}

	out := make([]domain.BlocklistRange, 0, len(raw))
	for i, item := range raw {
		rng, err := structuredEntry(item)
		if err != nil {
			return nil, fmt.Errorf("blocklist file %s entry %d: %w", path, i, err)
		}
		out = append(out, rng)
	}
	logger.Debug(map[string]any{"source": path, "count": len(out)}, "parse_structured_done")
	return out, nil
}

func structuredEntry(item any) (domain.BlocklistRange, error) {
	switch v := item.(type) {
	case string:
		return parseRangeLine(v)
	case map[string]any:
		spec, _ := v["range"].(string)
		if spec == "" {
			return domain.BlocklistRange{}, fmt.Errorf("missing 'range'")
		}
		lo, hi, err := parseRangeSpec(strings.TrimSpace(spec))
		if err != nil {
			return domain.BlocklistRange{}, err
		}
		modeStr, _ := v["scope"].(string)
		mode, err := domain.ParseScopeMode(modeStr)
		if err != nil {
			return domain.BlocklistRange{}, err
		}
		return domain.NewBlocklistRange(lo, hi, domain.NewTLDScope(mode, toStringValues(v["tlds"])))
	default:
		return domain.BlocklistRange{}, fmt.Errorf("unsupported entry type %T", item)
	}
}

// toStringValues converts a raw koanf value (a string or a list of strings)
// into its non-empty strings. A single string may hold a comma list.
func toStringValues(val any) []string {
	switch v := val.(type) {
	case string:
		return splitList(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

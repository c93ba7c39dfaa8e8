// Package script classifies codepoints for IDN display-safety checks: the
// Unicode script of a codepoint, whether it may appear in an identifier at
// all, and which decimal numbering system a digit belongs to.
package script

import (
	"fmt"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Script identifies the Unicode scripts the safety checks distinguish.
// Scripts outside the recommended and aspirational sets collapse into
// Restricted; unassigned codepoints are Unknown.
type Script uint8

const (
	Unknown Script = iota
	Restricted
	Common
	Inherited
	Latin
	Greek
	Cyrillic
	Armenian
	Hebrew
	Arabic
	Thaana
	Devanagari
	Bengali
	Gurmukhi
	Gujarati
	Oriya
	Tamil
	Telugu
	Kannada
	Malayalam
	Sinhala
	Thai
	Lao
	Tibetan
	Myanmar
	Georgian
	Hangul
	Ethiopic
	Khmer
	Mongolian
	Han
	Hiragana
	Katakana
	Bopomofo
	Yi
	CanadianAboriginal
	Tifinagh
	Miao
	numScripts
)

var scriptNames = [...]string{
	Unknown:            "Unknown",
	Restricted:         "Restricted",
	Common:             "Common",
	Inherited:          "Inherited",
	Latin:              "Latin",
	Greek:              "Greek",
	Cyrillic:           "Cyrillic",
	Armenian:           "Armenian",
	Hebrew:             "Hebrew",
	Arabic:             "Arabic",
	Thaana:             "Thaana",
	Devanagari:         "Devanagari",
	Bengali:            "Bengali",
	Gurmukhi:           "Gurmukhi",
	Gujarati:           "Gujarati",
	Oriya:              "Oriya",
	Tamil:              "Tamil",
	Telugu:             "Telugu",
	Kannada:            "Kannada",
	Malayalam:          "Malayalam",
	Sinhala:            "Sinhala",
	Thai:               "Thai",
	Lao:                "Lao",
	Tibetan:            "Tibetan",
	Myanmar:            "Myanmar",
	Georgian:           "Georgian",
	Hangul:             "Hangul",
	Ethiopic:           "Ethiopic",
	Khmer:              "Khmer",
	Mongolian:          "Mongolian",
	Han:                "Han",
	Hiragana:           "Hiragana",
	Katakana:           "Katakana",
	Bopomofo:           "Bopomofo",
	Yi:                 "Yi",
	CanadianAboriginal: "Canadian_Aboriginal",
	Tifinagh:           "Tifinagh",
	Miao:               "Miao",
}

// String returns the Unicode name of the script.
func (s Script) String() string {
	if s < numScripts {
		return scriptNames[s]
	}
	return fmt.Sprintf("Script(%d)", s)
}

// scriptTables lists the UAX 31 recommended scripts (table 5) followed by
// the aspirational scripts (table 7). Order matters only for speed: the
// most common scripts are probed first.
var scriptTables = []struct {
	script Script
	table  *unicode.RangeTable
}{
	{Latin, unicode.Latin},
	{Common, unicode.Common},
	{Inherited, unicode.Inherited},
	{Han, unicode.Han},
	{Cyrillic, unicode.Cyrillic},
	{Greek, unicode.Greek},
	{Hiragana, unicode.Hiragana},
	{Katakana, unicode.Katakana},
	{Hangul, unicode.Hangul},
	{Arabic, unicode.Arabic},
	{Hebrew, unicode.Hebrew},
	{Thai, unicode.Thai},
	{Devanagari, unicode.Devanagari},
	{Armenian, unicode.Armenian},
	{Georgian, unicode.Georgian},
	{Bopomofo, unicode.Bopomofo},
	{Thaana, unicode.Thaana},
	{Bengali, unicode.Bengali},
	{Gurmukhi, unicode.Gurmukhi},
	{Gujarati, unicode.Gujarati},
	{Oriya, unicode.Oriya},
	{Tamil, unicode.Tamil},
	{Telugu, unicode.Telugu},
	{Kannada, unicode.Kannada},
	{Malayalam, unicode.Malayalam},
	{Sinhala, unicode.Sinhala},
	{Lao, unicode.Lao},
	{Tibetan, unicode.Tibetan},
	{Myanmar, unicode.Myanmar},
	{Ethiopic, unicode.Ethiopic},
	{Khmer, unicode.Khmer},
	{Mongolian, unicode.Mongolian},
	{Yi, unicode.Yi},
	{CanadianAboriginal, unicode.Canadian_Aboriginal},
	{Tifinagh, unicode.Tifinagh},
	{Miao, unicode.Miao},
}

// allowedScripts is the union of every table in scriptTables.
var allowedScripts = func() *unicode.RangeTable {
	tables := make([]*unicode.RangeTable, 0, len(scriptTables))
	for _, st := range scriptTables {
		tables = append(tables, st.table)
	}
	return rangetable.Merge(tables...)
}()

// assigned covers every codepoint with a general category other than Cn.
var assigned = rangetable.Merge(unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z, unicode.C)

// Of returns the script of r.
func Of(r rune) Script {
	if r < 0x80 {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return Latin
		}
		return Common
	}
	if unicode.Is(allowedScripts, r) {
		for _, st := range scriptTables {
			if unicode.Is(st.table, r) {
				return st.script
			}
		}
	}
	if unicode.Is(assigned, r) {
		return Restricted
	}
	return Unknown
}

// IsNeutral reports whether s never changes the script mix of a label.
func (s Script) IsNeutral() bool {
	return s == Common || s == Inherited
}

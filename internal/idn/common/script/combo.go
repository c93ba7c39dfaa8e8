package script

import "github.com/haukened/rr-idn/internal/idn/domain"

// comboTag summarizes the scripts seen so far in a label.
type comboTag int8

const (
	comboUnset comboTag = iota - 1
	comboBopo
	comboCyrl
	comboGrek
	comboHang
	comboHani
	comboHira
	comboKata
	comboLatn
	comboOthr
	comboJpan // Latin + Han + Hiragana + Katakana
	comboChna // Latin + Han + Bopomofo
	comboKore // Latin + Han + Hangul
	comboHnlt // Latin + Han, could still become any of the above
	comboFail
)

// comboTable[saved][column] is the tag after adding a script of the column's
// kind to a label whose scripts so far are summarized by saved.
var comboTable = [comboFail][comboJpan]comboTag{
	/*          BOPO        CYRL        GREK        HANG        HANI        HIRA        KATA        LATN        OTHR */
	comboBopo: {comboBopo, comboFail, comboFail, comboFail, comboChna, comboFail, comboFail, comboChna, comboFail},
	comboCyrl: {comboFail, comboCyrl, comboFail, comboFail, comboFail, comboFail, comboFail, comboFail, comboFail},
	comboGrek: {comboFail, comboFail, comboGrek, comboFail, comboFail, comboFail, comboFail, comboFail, comboFail},
	comboHang: {comboFail, comboFail, comboFail, comboHang, comboKore, comboFail, comboFail, comboKore, comboFail},
	comboHani: {comboChna, comboFail, comboFail, comboKore, comboHani, comboJpan, comboJpan, comboHnlt, comboFail},
	comboHira: {comboFail, comboFail, comboFail, comboFail, comboJpan, comboHira, comboJpan, comboJpan, comboFail},
	comboKata: {comboFail, comboFail, comboFail, comboFail, comboJpan, comboJpan, comboKata, comboJpan, comboFail},
	comboLatn: {comboChna, comboFail, comboFail, comboKore, comboHnlt, comboJpan, comboJpan, comboLatn, comboOthr},
	comboOthr: {comboFail, comboFail, comboFail, comboFail, comboFail, comboFail, comboFail, comboOthr, comboFail},
	comboJpan: {comboFail, comboFail, comboFail, comboFail, comboJpan, comboJpan, comboJpan, comboJpan, comboFail},
	comboChna: {comboChna, comboFail, comboFail, comboFail, comboChna, comboFail, comboFail, comboChna, comboFail},
	comboKore: {comboFail, comboFail, comboFail, comboKore, comboKore, comboFail, comboFail, comboKore, comboFail},
	comboHnlt: {comboChna, comboFail, comboFail, comboKore, comboHnlt, comboJpan, comboJpan, comboHnlt, comboFail},
}

func column(s Script) comboTag {
	switch s {
	case Bopomofo:
		return comboBopo
	case Cyrillic:
		return comboCyrl
	case Greek:
		return comboGrek
	case Hangul:
		return comboHang
	case Han:
		return comboHani
	case Hiragana:
		return comboHira
	case Katakana:
		return comboKata
	case Latin:
		return comboLatn
	default:
		return comboOthr
	}
}

// Combo is the script-combination state of one label. The zero value is not
// ready; start from NewCombo. Combo is a value: Add returns the next state
// and leaves the receiver untouched.
type Combo struct {
	tag   comboTag
	other Script // the single script filed under OTHR, if any
}

// NewCombo returns the state of a label with no scripts seen yet.
func NewCombo() Combo {
	return Combo{tag: comboUnset}
}

// Add folds script s into the combination. legal is false once the scripts
// seen so far may not share a label under profile. Common and Inherited
// must not be passed in.
//
// Highly restrictive allows a single script or Latin + Han + Hiragana +
// Katakana, Latin + Han + Bopomofo, Latin + Han + Hangul. Moderately
// restrictive also allows Latin with one other script except Cyrillic and
// Greek.
func (c Combo) Add(profile domain.RestrictionProfile, s Script) (next Combo, legal bool) {
	if c.tag == comboFail {
		return c, false
	}
	col := column(s)
	if col == comboOthr {
		if c.other != Unknown && c.other != s {
			return Combo{tag: comboFail}, false
		}
		c.other = s
	}
	switch {
	case c.tag == comboUnset:
		c.tag = col
		return c, true
	case c.tag == comboOthr && col == comboOthr:
		return c, true
	}
	c.tag = comboTable[c.tag][col]
	// OTHR reached from another state means Latin plus one other script,
	// which only the moderately restrictive profile tolerates.
	if c.tag == comboFail || (c.tag == comboOthr && profile == domain.HighlyRestrictive) {
		return Combo{tag: comboFail}, false
	}
	return c, true
}

// IsCyrillicOnly reports whether every script seen so far is Cyrillic.
func (c Combo) IsCyrillicOnly() bool {
	return c.tag == comboCyrl
}

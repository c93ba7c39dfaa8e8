package ace

import (
	"errors"
	"strings"
)

// RFC 3492 bootstring parameters for punycode.
const (
	maxInt32      int32 = 2147483647
	base          int32 = 36
	tMin          int32 = 1
	tMax          int32 = 26
	skew          int32 = 38
	damp          int32 = 700
	initialBias   int32 = 72
	initialN      int32 = 128
	baseMinusTMin       = base - tMin
)

var (
	ErrOverflow     = errors.New("punycode: overflow")
	ErrNotBasic     = errors.New("punycode: non-basic code point in basic section")
	ErrInvalidInput = errors.New("punycode: invalid input")
)

func adapt(delta, numPoints int32, firstTime bool) int32 {
	if firstTime {
		delta /= damp
	} else {
		delta /= 2
	}
	delta += delta / numPoints
	k := int32(0)
	for delta > baseMinusTMin*tMax/2 {
		delta /= baseMinusTMin
		k += base
	}
	return k + (baseMinusTMin+1)*delta/(delta+skew)
}

func basicToDigit(b byte) int32 {
	switch {
	case b >= '0' && b <= '9':
		return int32(b - 22)
	case b >= 'A' && b <= 'Z':
		return int32(b - 'A')
	case b >= 'a' && b <= 'z':
		return int32(b - 'a')
	}
	return base
}

func digitToBasic(digit int32) byte {
	if digit < 26 {
		return byte(digit) + 'a'
	}
	return byte(digit-26) + '0'
}

// threshold clamps k - bias into [tMin, tMax].
func threshold(k, bias int32) int32 {
	t := k - bias
	if t < tMin {
		return tMin
	}
	if t > tMax {
		return tMax
	}
	return t
}

// Decode converts a punycode payload (without the ACE prefix) into Unicode.
func Decode(s string) (string, error) {
	basic := strings.LastIndexByte(s, '-')
	output := make([]rune, 0, len(s))
	for i := 0; i < basic; i++ {
		b := s[i]
		if b >= 0x80 {
			return "", ErrNotBasic
		}
		output = append(output, rune(b))
	}

	i, n, bias, pos := int32(0), initialN, initialBias, basic+1

	for pos < len(s) {
		oldi, w := i, int32(1)
		for k := base; ; k += base {
			digit := basicToDigit(s[pos])
			pos++
			if digit >= base {
				return "", ErrInvalidInput
			}
			if digit > (maxInt32-i)/w {
				return "", ErrOverflow
			}
			i += digit * w

			t := threshold(k, bias)
			if digit < t {
				break
			}
			if pos == len(s) {
				return "", ErrInvalidInput
			}
			if w > maxInt32/(base-t) {
				return "", ErrOverflow
			}
			w *= base - t
		}

		out := int32(len(output) + 1)
		bias = adapt(i-oldi, out, oldi == 0)

		if i/out > maxInt32-n {
			return "", ErrOverflow
		}
		n += i / out
		i %= out

		output = append(output, 0)
		copy(output[i+1:], output[i:])
		output[i] = rune(n)
		i++
	}
	return string(output), nil
}

// Encode converts a Unicode label into its punycode payload, without the
// ACE prefix.
func Encode(input string) (string, error) {
	n, delta, bias := initialN, int32(0), initialBias

	output := make([]byte, 0, len(input)+8)
	remaining := 0
	for _, r := range input {
		if r >= 0x80 {
			remaining++
			continue
		}
		output = append(output, byte(r))
	}

	basicLength := len(output)
	handled := basicLength
	if basicLength > 0 {
		output = append(output, '-')
	}

	for remaining > 0 {
		m := maxInt32
		for _, r := range input {
			if r >= n && r < m {
				m = r
			}
		}

		handledPlusOne := int32(handled + 1)
		if m-n > (maxInt32-delta)/handledPlusOne {
			return "", ErrOverflow
		}
		delta += (m - n) * handledPlusOne
		n = m

		for _, r := range input {
			if r < n {
				delta++
				if delta == maxInt32 {
					return "", ErrOverflow
				}
				continue
			}
			if r > n {
				continue
			}
			q := delta
			for k := base; ; k += base {
				t := threshold(k, bias)
				if q < t {
					break
				}
				output = append(output, digitToBasic(t+(q-t)%(base-t)))
				q = (q - t) / (base - t)
			}
			output = append(output, digitToBasic(q))
			bias = adapt(delta, handledPlusOne, handled == basicLength)
			delta = 0
			handled++
			handledPlusOne = int32(handled + 1)
			remaining--
		}
		delta++
		n++
	}
	return string(output), nil
}

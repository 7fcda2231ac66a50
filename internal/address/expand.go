// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Charset lists the letters used for alphabetic house number suffixes. "g" is left out on
// purpose, house numbering skips it.
const Charset = "abcdefhijklmnopqrstuvwxyz"

// MaxRangeSize is the largest number of addresses a single range may expand to.
const MaxRangeSize = 10000

var (
	ErrLetterNotInCharset = errors.New("house number letter not in charset")
	ErrInvalidBound       = errors.New("invalid range bound")
	ErrRangeTooLarge      = errors.New("range exceeds maximum size")
)

// Expand returns every address the range from start to end (inclusive) of the given kind
// denotes. All returned addresses inherit base and carry kind as their interpolation flag.
// A reversed range is not an error, it yields no addresses.
func Expand(base Address, start, end string, kind RangeKind) ([]Address, error) {
	if kind == RangeAlphabetic {
		return expandAlphabetic(base, start, end)
	}
	return expandNumeric(base, start, end, kind)
}

func expandAlphabetic(base Address, start, end string) ([]Address, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	number := leadingDigits(start)

	startIdx, err := letterIndex(start)
	if err != nil {
		return nil, fmt.Errorf("failed to locate range start %q: %w", start, err)
	}
	endIdx, err := letterIndex(end)
	if err != nil {
		return nil, fmt.Errorf("failed to locate range end %q: %w", end, err)
	}

	var addrs []Address
	for idx := startIdx; idx <= endIdx; idx++ {
		addr := base
		addr.HouseNumber = number + string(Charset[idx])
		addr.Interpolated = RangeAlphabetic
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func expandNumeric(base Address, start, end string, kind RangeKind) ([]Address, error) {
	from, err := strconv.Atoi(strings.TrimSpace(start))
	if err != nil {
		return nil, fmt.Errorf("failed to parse range start %q: %w", start, ErrInvalidBound)
	}
	to, err := strconv.Atoi(strings.TrimSpace(end))
	if err != nil {
		return nil, fmt.Errorf("failed to parse range end %q: %w", end, ErrInvalidBound)
	}

	step := kind.Step()
	if (kind == RangeOdd && from%2 == 0) || (kind == RangeEven && from%2 != 0) {
		if from >= to {
			return nil, nil
		}
		from++
	}
	if from > to {
		return nil, nil
	}

	// to >= from, so the unsigned difference is exact even when it exceeds math.MaxInt.
	steps := (uint64(to) - uint64(from)) / uint64(step)
	if steps >= MaxRangeSize {
		return nil, fmt.Errorf("failed to expand range %q to %q: %w", start, end, ErrRangeTooLarge)
	}
	count := steps + 1

	addrs := make([]Address, 0, count)
	for i := range count {
		addr := base
		addr.HouseNumber = strconv.Itoa(int(uint64(from) + i*uint64(step)))
		addr.Interpolated = kind
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// Step returns the distance between two consecutive house numbers of a numeric range.
func (k RangeKind) Step() int {
	switch k {
	case RangeOdd, RangeEven:
		return 2
	}
	if step, err := strconv.Atoi(string(k)); err == nil && step > 0 {
		return step
	}
	return 1
}

func leadingDigits(val string) string {
	idx := strings.IndexFunc(val, func(r rune) bool { return !unicode.IsDigit(r) })
	if idx == -1 {
		return val
	}
	return val[:idx]
}

func letterIndex(val string) (int, error) {
	if val == "" {
		return -1, ErrLetterNotInCharset
	}
	letter := unicode.ToLower(rune(val[len(val)-1]))
	idx := strings.IndexRune(Charset, letter)
	if idx == -1 {
		return -1, ErrLetterNotInCharset
	}
	return idx, nil
}

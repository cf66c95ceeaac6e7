// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fmt provides utility methods for building source code and debugging strings.
package fmt

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Number adds a number prefix to all lines in a string.
// It is used to point at lines of generated source code in error messages.
func Number(x string) string {
	lines := slices.Collect(strings.Lines(x))
	numDigits := int(math.Log10(float64(len(lines)))) + 1
	fmtString := fmt.Sprintf("%%0%dd %%s", numDigits)
	var s strings.Builder
	for i, line := range lines {
		s.WriteString(fmt.Sprintf(fmtString, i+1, line))
	}
	return s.String()
}

// IndentSkip skips some lines and indent the rest with a tabulation.
func IndentSkip(skip int, x string) string {
	var y strings.Builder
	n := 0
	for line := range strings.Lines(x) {
		if n >= skip {
			y.WriteString("\t")
		}
		y.WriteString(line)
		n++
	}
	return y.String()
}

// Indent the given string by a tabulation.
func Indent(x string) string {
	return IndentSkip(0, x)
}

// Tabs returns a prefix of depth tabulations.
func Tabs(depth int) string {
	return strings.Repeat("\t", depth)
}

// Join the strings returned by str for each value of a slice.
func Join[T any](vals []T, str func(T) string, sep string) string {
	strs := make([]string, len(vals))
	for i, val := range vals {
		strs[i] = str(val)
	}
	return strings.Join(strs, sep)
}

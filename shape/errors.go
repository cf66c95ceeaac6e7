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

package shape

import "github.com/pkg/errors"

// Shape errors. Errors returned by this package wrap one of these values
// and can be tested with errors.Is.
var (
	// ErrInvalidPermutation is returned when a permutation is not a bijection on the axes.
	ErrInvalidPermutation = errors.New("invalid permutation")
	// ErrRankMismatch is returned when two lists that should have one entry per axis differ in length.
	ErrRankMismatch = errors.New("rank mismatch")
	// ErrSizeMismatch is returned when two shapes do not have the same number of elements.
	ErrSizeMismatch = errors.New("size mismatch")
)

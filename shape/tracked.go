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

import (
	"slices"
	"strings"
)

// Tracked is a series of layout transformations.
// The series starts from the first view and ends at the last one.
// It always contains at least one view.
type Tracked struct {
	views []*View
}

// NewTracked returns a series containing a single view.
func NewTracked(initial *View) *Tracked {
	return &Tracked{views: []*View{initial}}
}

// Compose returns a new series applying the views of t then the views of other.
// The views are appended as they are, without any simplification.
func (t *Tracked) Compose(other *Tracked) *Tracked {
	views := make([]*View, 0, len(t.views)+len(other.views))
	views = append(views, t.views...)
	views = append(views, other.views...)
	return &Tracked{views: views}
}

// Permute appends to the series the last view with its axes permuted.
func (t *Tracked) Permute(permutation []int) (*Tracked, error) {
	pv, err := t.Last().PermuteAxes(permutation)
	if err != nil {
		return nil, err
	}
	return t.Compose(NewTracked(pv)), nil
}

// Reshape appends to the series the last view with a new shape.
// ok is false if the last view cannot be reshaped without a copy.
func (t *Tracked) Reshape(newShape []int) (rt *Tracked, ok bool, err error) {
	rv, ok, err := t.Last().Reshape(newShape)
	if err != nil || !ok {
		return nil, ok, err
	}
	return t.Compose(NewTracked(rv)), true, nil
}

// Last returns the final view of the series.
func (t *Tracked) Last() *View {
	return t.views[len(t.views)-1]
}

// Views returns all the views in the series.
func (t *Tracked) Views() []*View {
	return slices.Clone(t.views)
}

// Len returns the number of views in the series.
func (t *Tracked) Len() int {
	return len(t.views)
}

// Shape returns the final shape.
func (t *Tracked) Shape() []int {
	return t.Last().Shape()
}

// Strides returns the final strides.
func (t *Tracked) Strides() []int {
	return t.Last().Strides()
}

// Size returns the final number of elements.
func (t *Tracked) Size() int {
	return t.Last().Size()
}

// String representation of the series.
func (t *Tracked) String() string {
	ss := make([]string, len(t.views))
	for i, v := range t.views {
		ss[i] = v.String()
	}
	return "Tracked[" + strings.Join(ss, " -> ") + "]"
}

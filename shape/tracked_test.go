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

package shape_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/shape"
)

func TestTrackedDelegatesToLast(t *testing.T) {
	initial := mustNew(t, []int{2, 2}, []int{1, 1})
	ts := shape.NewTracked(initial)
	if diff := cmp.Diff(initial.Shape(), ts.Shape()); diff != "" {
		t.Errorf("unexpected shape (-want +got):\n%s", diff)
	}
	if ts.Len() != 1 {
		t.Errorf("got %d views but want 1", ts.Len())
	}

	last := shape.FromShape([]int{4})
	composed := ts.Compose(shape.NewTracked(last))
	if composed.Len() != 2 {
		t.Fatalf("got %d views but want 2", composed.Len())
	}
	if diff := cmp.Diff([]int{4}, composed.Shape()); diff != "" {
		t.Errorf("unexpected shape (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1}, composed.Strides()); diff != "" {
		t.Errorf("unexpected strides (-want +got):\n%s", diff)
	}
	if composed.Size() != 4 {
		t.Errorf("got size %d but want 4", composed.Size())
	}
	// Composing does not modify its operands.
	if ts.Len() != 1 {
		t.Errorf("compose modified its receiver: got %d views", ts.Len())
	}
}

func TestTrackedComposeKeepsAllViews(t *testing.T) {
	a := shape.NewTracked(shape.FromShape([]int{6}))
	b := shape.NewTracked(shape.FromShape([]int{6})).Compose(shape.NewTracked(shape.FromShape([]int{6})))
	got := a.Compose(b)
	if got.Len() != 3 {
		t.Errorf("identical views should not be collapsed: got %d views but want 3", got.Len())
	}
	for i, v := range got.Views() {
		if !v.Equal(shape.FromShape([]int{6})) {
			t.Errorf("view %d: got %s", i, v)
		}
	}
}

func TestTrackedTransformations(t *testing.T) {
	ts := shape.NewTracked(shape.FromShape([]int{3, 2}))
	flat, ok, err := ts.Reshape([]int{6})
	if err != nil || !ok {
		t.Fatalf("cannot reshape: ok=%v err=%v", ok, err)
	}
	back, ok, err := flat.Reshape([]int{2, 3})
	if err != nil || !ok {
		t.Fatalf("cannot reshape: ok=%v err=%v", ok, err)
	}
	permuted, err := back.Permute([]int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if permuted.Len() != 4 {
		t.Errorf("got %d views but want 4: %s", permuted.Len(), permuted)
	}
	if diff := cmp.Diff([]int{3, 2}, permuted.Shape()); diff != "" {
		t.Errorf("unexpected shape (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3}, permuted.Strides()); diff != "" {
		t.Errorf("unexpected strides (-want +got):\n%s", diff)
	}

	// The permuted view is not contiguous anymore.
	got, ok, err := permuted.Reshape([]int{6})
	if err != nil {
		t.Fatal(err)
	}
	if ok || got != nil {
		t.Errorf("reshaping %s should require a copy", permuted)
	}

	if _, err := permuted.Permute([]int{0}); !errors.Is(err, shape.ErrInvalidPermutation) {
		t.Errorf("got error %v but want %v", err, shape.ErrInvalidPermutation)
	}
}

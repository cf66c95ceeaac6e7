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

// Package render lowers kernels into source code for a target language.
package render

import (
	"github.com/pkg/errors"
	gxfmt "github.com/gx-org/tensoru/base/fmt"
	"github.com/gx-org/tensoru/codegen/ir"
)

// Target renders finalized kernels into source code.
//
// Rendering never modifies a kernel and always produces the same text for
// the same kernel. A target does not check that a kernel is well-formed:
// rendering a malformed kernel produces source code that does not compile.
type Target interface {
	// Name of the target language.
	Name() string
	// Render a kernel into source code.
	Render(k *ir.Kernel) string
}

// Checked validates a kernel before rendering it with a target.
// If the kernel is malformed, the error includes the numbered lines
// of the source code the target would have generated.
func Checked(target Target, k *ir.Kernel) (string, error) {
	if err := ir.Validate(k); err != nil {
		return "", errors.Wrapf(err, "cannot render kernel %q to %s:\n%s\n", k.Name, target.Name(), gxfmt.Number(target.Render(k)))
	}
	return target.Render(k), nil
}

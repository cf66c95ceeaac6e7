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

// Package api connects kernels to a device and a source code renderer.
package api

import (
	"github.com/gx-org/tensoru/api/options"
	"github.com/gx-org/tensoru/codegen/ir"
	"github.com/gx-org/tensoru/codegen/render"
	"github.com/gx-org/tensoru/codegen/render/crender"
	"github.com/gx-org/tensoru/device"
	"github.com/gx-org/tensoru/interp"
	"github.com/gx-org/tensoru/scalar"

	// Register the default device.
	_ "github.com/gx-org/tensoru/device/host"
)

// Runtime encapsulates a device allocating buffers
// and a target rendering kernels into source code.
type Runtime struct {
	opts   options.Options
	alloc  device.Allocator
	target render.Target
}

// New returns a new runtime given options.
func New(opts options.Options) (*Runtime, error) {
	alloc, err := device.Lookup(opts.Device)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		opts:   opts,
		alloc:  alloc,
		target: crender.New(),
	}, nil
}

// NewFromEnv returns a new runtime configured by environment variables.
func NewFromEnv(opts ...options.Option) (*Runtime, error) {
	return New(options.FromEnv().Apply(opts...))
}

// Options used by the runtime.
func (rtm *Runtime) Options() options.Options {
	return rtm.opts
}

// Allocator used by the runtime to allocate buffers.
func (rtm *Runtime) Allocator() device.Allocator {
	return rtm.alloc
}

// Target rendering kernels.
func (rtm *Runtime) Target() render.Target {
	return rtm.target
}

// Allocate a buffer of n elements on the device of the runtime.
func (rtm *Runtime) Allocate(elem scalar.Type, n int) (*device.Buffer, error) {
	return rtm.alloc.Allocate(elem, n)
}

// Render a kernel into source code.
// The kernel is validated first if validation has been enabled in the options.
func (rtm *Runtime) Render(k *ir.Kernel) (string, error) {
	if rtm.opts.Validate {
		return render.Checked(rtm.target, k)
	}
	return rtm.target.Render(k), nil
}

// Run a kernel on the host given the buffers of its arguments.
func (rtm *Runtime) Run(k *ir.Kernel, args ...*device.Buffer) error {
	return interp.Run(k, args)
}

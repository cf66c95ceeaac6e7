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

// Package options specifies options for a runtime.
package options

import (
	"fmt"

	"github.com/xyproto/env/v2"
)

// Environment variables read by FromEnv.
const (
	// EnvDevice is the name of the device allocating buffers.
	EnvDevice = "TENSORU_DEVICE"
	// EnvValidate enables the validation of kernels before they are rendered.
	EnvValidate = "TENSORU_VALIDATE"
)

// DefaultDevice is the device used when none is specified.
const DefaultDevice = "host"

type (
	// Options of a runtime.
	Options struct {
		// Device is the name of the device allocating buffers.
		Device string
		// Validate is true if kernels are validated before being rendered.
		Validate bool
	}

	// Option modifies options.
	Option func(*Options)
)

// Default returns the default options.
func Default() Options {
	return Options{Device: DefaultDevice}
}

// FromEnv returns options read from environment variables.
// Variables not set keep their default values.
// The environment is read again at each call.
func FromEnv() Options {
	env.Load()
	return Options{
		Device:   env.Str(EnvDevice, DefaultDevice),
		Validate: env.Bool(EnvValidate),
	}
}

// WithDevice sets the device.
func WithDevice(name string) Option {
	return func(opts *Options) {
		opts.Device = name
	}
}

// WithValidation enables or disables the validation of kernels.
func WithValidation(validate bool) Option {
	return func(opts *Options) {
		opts.Validate = validate
	}
}

// Apply options and returns the result.
func (opts Options) Apply(options ...Option) Options {
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// String representation of the options.
func (opts Options) String() string {
	return fmt.Sprintf("device=%s validate=%v", opts.Device, opts.Validate)
}

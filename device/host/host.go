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

// Package host allocates buffers in memory managed by the Go runtime.
// This is the default device.
package host

import (
	"unsafe"

	"github.com/gx-org/tensoru/device"
	"github.com/gx-org/tensoru/scalar"
)

// Name of the device.
const Name = "host"

type allocator struct{}

var _ device.Allocator = (*allocator)(nil)

var goAllocator = &allocator{}

func init() {
	device.MustRegister(goAllocator)
}

// Allocator returns an allocator allocating memory using Go.
func Allocator() device.Allocator {
	return goAllocator
}

func (allocator) Name() string {
	return Name
}

// Allocate Go memory for n elements.
// The memory is aligned on 8 bytes.
func (allocator) Allocate(elem scalar.Type, n int) (*device.Buffer, error) {
	size, err := device.ByteSize(elem, n)
	if err != nil {
		return nil, err
	}
	var data []byte
	if size > 0 {
		words := make([]uint64, (size+7)/8)
		data = unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size)
	}
	return device.NewBuffer(Name, elem, n, data, nil)
}

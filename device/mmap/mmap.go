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

//go:build unix

// Package mmap allocates buffers in anonymous memory mappings outside of the Go heap.
// The memory is page aligned and is released to the system when a buffer is freed.
package mmap

import (
	"github.com/pkg/errors"
	"github.com/gx-org/tensoru/device"
	"github.com/gx-org/tensoru/scalar"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// Name of the device.
const Name = "mmap"

type allocator struct{}

var _ device.Allocator = (*allocator)(nil)

var mmapAllocator = &allocator{}

func init() {
	device.MustRegister(mmapAllocator)
}

// Allocator returns an allocator mapping anonymous memory.
func Allocator() device.Allocator {
	return mmapAllocator
}

func (allocator) Name() string {
	return Name
}

func unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return errors.Wrapf(err, "cannot unmap %d bytes", len(data))
	}
	return nil
}

// Allocate maps memory for n elements.
// Anonymous mappings are filled with zeros by the system.
func (allocator) Allocate(elem scalar.Type, n int) (*device.Buffer, error) {
	size, err := device.ByteSize(elem, n)
	if err != nil {
		return nil, err
	}
	var data []byte
	if size > 0 {
		data, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot map %d bytes for %d elements of type %s", size, n, elem)
		}
	}
	buf, err := device.NewBuffer(Name, elem, n, data, unmap)
	if err != nil {
		return nil, multierr.Combine(err, unmap(data))
	}
	return buf, nil
}

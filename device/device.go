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

// Package device defines buffers storing the arguments of kernels.
package device

import (
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/tensoru/scalar"
)

var (
	// ErrFreed is returned when accessing a buffer after it has been freed.
	ErrFreed = errors.New("buffer has been freed")
	// ErrLength is returned when the length of some data does not match the length of a buffer.
	ErrLength = errors.New("length mismatch")
	// ErrUnknown is returned when looking up an allocator that has not been registered.
	ErrUnknown = errors.New("unknown device")
)

// Allocator allocates buffers on a device.
type Allocator interface {
	// Name of the device.
	Name() string
	// Allocate a buffer of n elements. The buffer is filled with zeros.
	Allocate(elem scalar.Type, n int) (*Buffer, error)
}

// Buffer is a linear array of elements on a device.
type Buffer struct {
	mut    sync.Mutex
	device string
	elem   scalar.Type
	n      int
	data   []byte
	freed  bool
	free   func([]byte) error
}

// ByteSize returns the number of bytes required to store n elements.
func ByteSize(elem scalar.Type, n int) (int, error) {
	if !elem.IsValid() {
		return 0, errors.Errorf("cannot allocate elements of type %s", elem)
	}
	if n < 0 {
		return 0, errors.Errorf("cannot allocate %d elements", n)
	}
	return n * elem.Sizeof(), nil
}

// NewBuffer returns a buffer given the memory storing its elements.
// free is called with the memory when the buffer is freed. It can be nil.
func NewBuffer(device string, elem scalar.Type, n int, data []byte, free func([]byte) error) (*Buffer, error) {
	size, err := ByteSize(elem, n)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, errors.Wrapf(ErrLength, "%d elements of type %s require %d bytes but got %d", n, elem, size, len(data))
	}
	return &Buffer{device: device, elem: elem, n: n, data: data, free: free}, nil
}

// Device returns the name of the device storing the buffer.
func (buf *Buffer) Device() string {
	return buf.device
}

// Elem returns the type of the elements in the buffer.
func (buf *Buffer) Elem() scalar.Type {
	return buf.elem
}

// Len returns the number of elements in the buffer.
func (buf *Buffer) Len() int {
	return buf.n
}

// Acquire locks the buffer and returns its memory.
// The memory can be read or written by the caller. All other access is locked.
// Returns nil if the buffer has been freed.
func (buf *Buffer) Acquire() []byte {
	buf.mut.Lock()
	if buf.freed {
		return nil
	}
	return buf.data
}

// Release the buffer. The caller of that function should not read or write data
// from the buffer.
func (buf *Buffer) Release() {
	buf.mut.Unlock()
}

// CopyIn copies raw data into the buffer.
func (buf *Buffer) CopyIn(src []byte) error {
	dst := buf.Acquire()
	defer buf.Release()
	if dst == nil && buf.freed {
		return ErrFreed
	}
	if len(src) != len(dst) {
		return errors.Wrapf(ErrLength, "cannot copy %d bytes into a buffer of %d bytes", len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

// CopyOut copies the content of the buffer into dst.
func (buf *Buffer) CopyOut(dst []byte) error {
	src := buf.Acquire()
	defer buf.Release()
	if src == nil && buf.freed {
		return ErrFreed
	}
	if len(src) != len(dst) {
		return errors.Wrapf(ErrLength, "cannot copy a buffer of %d bytes into %d bytes", len(src), len(dst))
	}
	copy(dst, src)
	return nil
}

// Free the memory occupied by the buffer. The buffer is invalid after calling this function.
func (buf *Buffer) Free() error {
	buf.mut.Lock()
	defer buf.mut.Unlock()
	if buf.freed {
		return ErrFreed
	}
	buf.freed = true
	data := buf.data
	buf.data = nil
	if buf.free == nil {
		return nil
	}
	return buf.free(data)
}

func toBytes[T scalar.GoType](vals []T) []byte {
	if len(vals) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*int(unsafe.Sizeof(zero)))
}

func checkElem[T scalar.GoType](buf *Buffer) error {
	if want := scalar.Generic[T](); want != buf.elem {
		return errors.Errorf("cannot access a buffer of %s as %s", buf.elem, want)
	}
	return nil
}

// Write Go values into a buffer.
func Write[T scalar.GoType](buf *Buffer, vals []T) error {
	if err := checkElem[T](buf); err != nil {
		return err
	}
	if len(vals) != buf.n {
		return errors.Wrapf(ErrLength, "cannot write %d values into a buffer of %d elements", len(vals), buf.n)
	}
	return buf.CopyIn(toBytes(vals))
}

// Read returns a copy of the elements of a buffer as Go values.
func Read[T scalar.GoType](buf *Buffer) ([]T, error) {
	if err := checkElem[T](buf); err != nil {
		return nil, err
	}
	data := make([]byte, buf.n*buf.elem.Sizeof())
	if err := buf.CopyOut(data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	return dtype.ToSlice[T](data), nil
}

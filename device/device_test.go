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

package device_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/gx-org/tensoru/device"
	"github.com/gx-org/tensoru/device/host"
	"github.com/gx-org/tensoru/scalar"
)

type fakeAllocator struct{ name string }

func (a fakeAllocator) Name() string { return a.name }

func (fakeAllocator) Allocate(elem scalar.Type, n int) (*device.Buffer, error) {
	return nil, errors.Errorf("not implemented")
}

func TestRegistry(t *testing.T) {
	alloc, err := device.Lookup(host.Name)
	require.NoError(t, err)
	assert.Equal(t, host.Name, alloc.Name())

	require.NoError(t, device.Register(fakeAllocator{name: "fake"}))
	assert.Error(t, device.Register(fakeAllocator{name: "fake"}))
	assert.Contains(t, device.Names(), "fake")
	assert.IsNonDecreasing(t, device.Names())

	_, err = device.Lookup("tpu")
	assert.True(t, errors.Is(err, device.ErrUnknown), "got error %v", err)
}

func TestNewBuffer(t *testing.T) {
	_, err := device.NewBuffer("test", scalar.F32, 2, make([]byte, 7), nil)
	assert.True(t, errors.Is(err, device.ErrLength), "got error %v", err)
	_, err = device.NewBuffer("test", scalar.Invalid, 0, nil, nil)
	assert.Error(t, err)
	_, err = device.NewBuffer("test", scalar.F32, -1, nil, nil)
	assert.Error(t, err)

	freed := 0
	buf, err := device.NewBuffer("test", scalar.F16, 3, make([]byte, 6), func([]byte) error {
		freed++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "test", buf.Device())
	assert.Equal(t, scalar.F16, buf.Elem())
	assert.Equal(t, 3, buf.Len())
	require.NoError(t, buf.Free())
	assert.True(t, errors.Is(buf.Free(), device.ErrFreed))
	assert.Equal(t, 1, freed)
}

func TestReadWrite(t *testing.T) {
	buf, err := host.Allocator().Allocate(scalar.F32, 4)
	require.NoError(t, err)

	zeros, err := device.Read[float32](buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, zeros)

	want := []float32{1, 2.5, -3, 4}
	require.NoError(t, device.Write(buf, want))
	got, err := device.Read[float32](buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Read returns a copy.
	got[0] = 42
	again, err := device.Read[float32](buf)
	require.NoError(t, err)
	assert.Equal(t, want, again)

	assert.Error(t, device.Write(buf, []int32{1, 2, 3, 4}))
	_, err = device.Read[float64](buf)
	assert.Error(t, err)
	assert.True(t, errors.Is(device.Write(buf, []float32{1}), device.ErrLength))

	require.NoError(t, buf.Free())
	assert.Nil(t, buf.Acquire())
	buf.Release()
	_, err = device.Read[float32](buf)
	assert.True(t, errors.Is(err, device.ErrFreed), "got error %v", err)
}

func TestCopy(t *testing.T) {
	buf, err := host.Allocator().Allocate(scalar.U32, 2)
	require.NoError(t, err)
	src := []byte{1, 0, 0, 0, 2, 0, 0, 0}
	require.NoError(t, buf.CopyIn(src))
	dst := make([]byte, len(src))
	require.NoError(t, buf.CopyOut(dst))
	assert.Equal(t, src, dst)
	assert.True(t, errors.Is(buf.CopyIn(src[:4]), device.ErrLength))
	assert.True(t, errors.Is(buf.CopyOut(dst[:4]), device.ErrLength))
}

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

package device

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

var registry = struct {
	mut        sync.Mutex
	allocators map[string]Allocator
}{allocators: make(map[string]Allocator)}

// Register an allocator under its name.
func Register(alloc Allocator) error {
	registry.mut.Lock()
	defer registry.mut.Unlock()
	name := alloc.Name()
	if _, exist := registry.allocators[name]; exist {
		return errors.Errorf("device %q already registered", name)
	}
	registry.allocators[name] = alloc
	return nil
}

// MustRegister registers an allocator and panics if an error occurs.
func MustRegister(alloc Allocator) {
	if err := Register(alloc); err != nil {
		panic(err)
	}
}

// Lookup returns the allocator of a device given its name.
func Lookup(name string) (Allocator, error) {
	registry.mut.Lock()
	defer registry.mut.Unlock()
	alloc, ok := registry.allocators[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknown, "device %q not found in %v", name, names())
	}
	return alloc, nil
}

func names() []string {
	keys := maps.Keys(registry.allocators)
	sort.Strings(keys)
	return keys
}

// Names returns the sorted names of all the registered devices.
func Names() []string {
	registry.mut.Lock()
	defer registry.mut.Unlock()
	return names()
}

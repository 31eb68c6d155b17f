// Copyright 2025 Blink Labs Software
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

package nodeclient

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized          = errors.New("module not initialized")
	ErrInitializationExhausted = errors.New("initialization retries exhausted")
	// ErrNodeSyncing is the attempt failure used when the node has not yet
	// reached the minimum compatible protocol version
	ErrNodeSyncing = errors.New("node is not in the expected era")
)

// NotInitializedError is returned by guarded operations called before Initialize succeeds
type NotInitializedError struct {
	Module string
	Method string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s: %s called before initialization", e.Module, e.Method)
}

func (e *NotInitializedError) Is(target error) bool {
	return target == ErrNotInitialized
}

// InitializationExhaustedError is returned by Initialize when no attempt succeeded
type InitializationExhaustedError struct {
	Attempts int
	Err      error
}

func (e *InitializationExhaustedError) Error() string {
	return fmt.Sprintf(
		"initialization failed after %d attempt(s): %s",
		e.Attempts,
		e.Err,
	)
}

func (e *InitializationExhaustedError) Is(target error) bool {
	return target == ErrInitializationExhausted
}

func (e *InitializationExhaustedError) Unwrap() error {
	return e.Err
}

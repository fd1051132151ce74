/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import "errors"

// Structural-integrity violations are rejected at the API boundary and leave
// the tree unchanged. Callers compare with errors.Is.
var (
	// ErrNotFound means an operation referenced an unknown node id.
	ErrNotFound = errors.New("node not found")
	// ErrInvalidParent means add/reparent referenced a non-existent parent.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrCycle means a reparent would make a node its own ancestor.
	ErrCycle = errors.New("reparent would create a cycle")
	// ErrDuplicateID means add was called with an id already seen this session.
	ErrDuplicateID = errors.New("duplicate node id")
)

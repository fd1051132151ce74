/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

import (
	"sort"

	"github.com/google/uuid"
)

// Snapshot is a complete, self-consistent copy of the tree taken at one
// point in time. Nodes are sorted deterministically so equal trees produce
// byte-identical serializations, which is what history equality and
// persistence rely on.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
}

// Snapshot returns a deep copy of every live node.
func (t *Tree) Snapshot() Snapshot {
	nodes := make([]Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].ParentID != nodes[j].ParentID {
			return nodes[i].ParentID < nodes[j].ParentID
		}
		if nodes[i].Order != nodes[j].Order {
			return nodes[i].Order < nodes[j].Order
		}
		return nodes[i].ID < nodes[j].ID
	})
	return Snapshot{Nodes: nodes}
}

// Restore replaces the live node set with a deep copy of the snapshot.
// The session's used-id registry is merged, not reset: an id freed by an
// undone add stays burned for the rest of the session.
func (t *Tree) Restore(s Snapshot) {
	t.nodes = make(map[string]*Node, len(s.Nodes))
	for i := range s.Nodes {
		c := s.Nodes[i].Clone()
		t.nodes[c.ID] = &c
		t.usedIDs[c.ID] = struct{}{}
	}
}

// newUniqueID returns a uuid not present in used. Collisions are
// practically impossible but the loop keeps the session guarantee absolute.
func newUniqueID(used map[string]struct{}) string {
	for {
		id := uuid.NewString()
		if _, ok := used[id]; !ok {
			return id
		}
	}
}

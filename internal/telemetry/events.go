/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

// Named editor events. Only coarse counters and enum-like values are ever
// attached; document names, node text and ids must not leave the machine.

// DocumentOpened records that a document was loaded, with its node count as
// a size bucket.
func DocumentOpened(nodeCount int) {
	Event("document_opened", map[string]any{"nodes": nodeCount})
}

// ExportCompleted records a finished batch export.
func ExportCompleted(preset string, breakpoints int) {
	Event("export_completed", map[string]any{"preset": preset, "breakpoints": breakpoints})
}

// OutlineImported records a text-outline scaffold run.
func OutlineImported(sections, nodes int) {
	Event("outline_imported", map[string]any{"sections": sections, "nodes": nodes})
}

// PublishCompleted records a successful publish and the revision it produced.
func PublishCompleted(revision int64) {
	Event("publish_completed", map[string]any{"revision": revision})
}

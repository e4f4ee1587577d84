// Copyright 2025 Poiesic Systems
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

// Package report implements the lost and found reporting workflow.
//
// A Reporter persists new reports and runs both matching pipelines over them:
//
//   - For found items, the coarse email notifier (package notify) runs first.
//     Its failures are recorded on the Outcome and never undo the report.
//   - For every report, the semantic matcher (package match) compares the new
//     item with all stored items of the opposite type. Each counterpart owner
//     receives one dashboard notification.
//
// The Reporter also resolves (deletes) items, registers users and assembles a
// user's dashboard.
package report

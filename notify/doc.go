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

// Package notify implements the email alert pipeline for found items.
//
// When an item is reported found, the Notifier looks up lost items in exactly
// the same category, scores each pair with match.CoarseMatcher and emails the
// owner of every lost item whose combined score clears the threshold:
//
//	notifier, err := notify.NewNotifier(items, users, mailer,
//	    notify.WithPoolSize(4),
//	    notify.WithRetry(3, time.Second),
//	)
//	defer notifier.Release()
//	result, err := notifier.EvaluateFoundItem(ctx, found)
//
// Each alert runs as an independent task on a bounded ants pool. A failed or
// panicking delivery is recorded in the Result and never stops its siblings;
// only a failed candidate lookup aborts an evaluation.
package notify

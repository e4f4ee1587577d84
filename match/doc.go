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

// Package match scores lost reports against found reports.
//
// Two matchers implement the Matcher capability side by side:
//   - SemanticMatcher embeds "title description category" for the query and
//     every opposite-type candidate in one batch, then keeps candidates whose
//     cosine similarity exceeds DefaultSemanticThreshold.
//   - CoarseMatcher only compares lost candidates in exactly the query's
//     category, averaging case-folded sequence ratios of titles and
//     descriptions, and keeps pairs above DefaultCoarseThreshold.
//
// The two use different candidate rules and score formulas and may disagree.
// Both are kept distinct on purpose: unifying them would change which owners
// get alerted.
//
// Everything in this package is free of side effects. Callers persist items
// and notifications; the matchers only read what they are given.
package match

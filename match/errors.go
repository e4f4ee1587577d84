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

package match

import "errors"

var (
	// ErrEmbeddingUnavailable is returned when the embedding model could not
	// encode a batch. Matching did not run; it is not the same as "no matches".
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrCandidateLookup is returned when the candidate corpus could not be retrieved.
	ErrCandidateLookup = errors.New("candidate lookup failed")

	// ErrMalformedQuery is returned when a query carries a type other than lost or found.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrEmbedderRequired is returned when a SemanticMatcher is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidThreshold is returned for thresholds outside the score range.
	ErrInvalidThreshold = errors.New("invalid threshold")
)

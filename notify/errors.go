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

package notify

import "errors"

var (
	// ErrNotificationDelivery is returned when a single alert could not be delivered.
	ErrNotificationDelivery = errors.New("notification delivery failed")

	// ErrCandidateSourceRequired is returned when a candidate source is not provided.
	ErrCandidateSourceRequired = errors.New("candidate source required")

	// ErrUserLookupRequired is returned when a user lookup is not provided.
	ErrUserLookupRequired = errors.New("user lookup required")

	// ErrMailerRequired is returned when a mailer is not provided.
	ErrMailerRequired = errors.New("mailer required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrInvalidSMTPConfig is returned when the SMTP settings are incomplete.
	ErrInvalidSMTPConfig = errors.New("invalid SMTP configuration")
)

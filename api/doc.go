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

// Package api exposes the reporting workflow as a JSON HTTP API.
//
// Callers identify themselves with the X-User-ID header; authenticating that
// identity is left to whatever sits in front of the server. When a token is
// configured every route except the health checks also requires
// "Authorization: Bearer <token>".
//
// Routes:
//
//	POST   /users                register a user
//	POST   /items                report a lost or found item
//	DELETE /items/{id}           resolve (delete) one of the caller's items
//	GET    /dashboard            the caller's items and notifications
//	POST   /notifications/read   mark notifications read
//	POST   /match                semantic match without storing anything
//	GET    /health/live          liveness probe
package api

// Copyright 2025 Google LLC
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

// Package fmterr provides helpers to build and classify the errors
// reported while converting a program.
//
// Errors fall in two categories:
//   - user errors, caused by a malformed program (for example a value
//     defined in terms of itself), matched with errors.Is against the
//     sentinel errors of this package;
//   - internal errors, caused by a bug in the conversion, marked with Internal.
package fmterr

// Copyright 2025 Blink Labs Software
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

package submit

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyNote is returned when a submission carries neither title nor
// content. Recovered locally, never retried
var ErrEmptyNote = errors.New("title or content is required")

// CooldownActiveError is returned when a write is attempted inside the
// cooldown window. Expected and user-facing, not an error state
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf(
		"write cooldown active: %ds remaining",
		int(e.Remaining.Seconds()+0.999),
	)
}

// SigningRejectedError is returned when the external signing provider
// declines the transaction. Surfaced without retry
type SigningRejectedError struct {
	Err error
}

func (e *SigningRejectedError) Error() string {
	return fmt.Sprintf("signing rejected: %s", e.Err)
}

func (e *SigningRejectedError) Unwrap() error {
	return e.Err
}

// SubmissionError is returned when broadcasting the signed transaction to
// the ledger provider fails
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission failed: %s", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Copyright 2025 The EEGLink Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ads1299

import (
	"errors"
	"fmt"
)

// ErrSync reports a frame whose status word does not carry the fixed sync
// pattern. The frame content is still returned alongside it; the caller
// decides whether to drop the frame or abort the stream.
var ErrSync = errors.New("ads1299: status sync pattern mismatch")

// IdentityError reports a device that does not identify as an ADS1299.
// Bring-up halts; the driver never talks to silicon it cannot identify.
type IdentityError struct {
	ID byte
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("ads1299: unexpected device identity 0x%02X", e.ID)
}

// StateError reports an operation that is not legal in the device's current
// state, e.g. a register write while acquiring continuously. No bus
// transaction is issued for a rejected operation.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("ads1299: %s not allowed in state %s", e.Op, e.State)
}

// AddressError reports a register access outside the device's address map.
type AddressError struct {
	Addr byte
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("ads1299: invalid register address 0x%02X", e.Addr)
}

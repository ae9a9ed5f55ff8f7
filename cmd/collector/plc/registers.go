// Copyright 2024 NextCare Systems
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

package plc

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// ErrInvalidIdentifier is returned when a register address does not follow the
// one-letter-prefix-plus-digits scheme (D20, D21, ...).
var ErrInvalidIdentifier = errors.New("invalid register identifier")

// RegisterScaleFactor is the protocol-wide fixed-point scaling. The device
// stores round(engineering_value * 100) in each 16-bit holding register to
// preserve two decimal places.
const RegisterScaleFactor = 100

// ParseRegisterAddress extracts the numeric register from a textual address
// like "D20". The prefix letter carries no meaning on the wire, it only has to
// be present.
func ParseRegisterAddress(address string) (uint16, error) {
	if len(address) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, address)
	}
	prefix := rune(address[0])
	if !unicode.IsLetter(prefix) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, address)
	}
	register, err := strconv.ParseUint(address[1:], 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, address)
	}
	return uint16(register), nil
}

// ScaleRegisterValue converts a raw wire integer to its engineering value.
func ScaleRegisterValue(raw uint16) float64 {
	return float64(raw) / RegisterScaleFactor
}

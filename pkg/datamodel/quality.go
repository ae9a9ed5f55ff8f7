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

package datamodel

import "fmt"

// Quality classifies how a Reading was obtained.
type Quality int

const (
	// QualityGood means the value was read cleanly from the device
	QualityGood Quality = 0

	// QualityUncertain means the value is suspect. Reserved, the current
	// bound checks never produce it.
	QualityUncertain Quality = 1

	// QualityBad means the value could not be obtained
	QualityBad Quality = 2
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityUncertain:
		return "uncertain"
	case QualityBad:
		return "bad"
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// Code returns the numeric encoding used in the sensor_data table
// (0 good, 1 uncertain, 2 bad).
func (q Quality) Code() int {
	return int(q)
}

// QualityFromCode converts the stored numeric encoding back to a Quality.
// Unknown codes map to QualityBad.
func QualityFromCode(code int) Quality {
	switch code {
	case 0:
		return QualityGood
	case 1:
		return QualityUncertain
	case 2:
		return QualityBad
	}
	return QualityBad
}

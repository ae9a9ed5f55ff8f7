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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQualityRoundTrip(t *testing.T) {
	for _, q := range []Quality{QualityGood, QualityUncertain, QualityBad} {
		assert.Equal(t, q, QualityFromCode(q.Code()))
	}
}

func TestQualityCodes(t *testing.T) {
	// The numeric encoding is part of the storage format and must not drift.
	assert.Equal(t, 0, QualityGood.Code())
	assert.Equal(t, 1, QualityUncertain.Code())
	assert.Equal(t, 2, QualityBad.Code())
}

func TestQualityString(t *testing.T) {
	assert.Equal(t, "good", QualityGood.String())
	assert.Equal(t, "uncertain", QualityUncertain.String())
	assert.Equal(t, "bad", QualityBad.String())
	assert.Equal(t, "quality(7)", Quality(7).String())
}

func TestQualityFromCodeUnknown(t *testing.T) {
	assert.Equal(t, QualityBad, QualityFromCode(99))
}

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

package postgresql

const selectActivePoints = `
SELECT parameter_id, machine_id, name, register_address, unit, min_value, max_value, is_active
FROM parameters
WHERE is_active = true
ORDER BY parameter_id`

const insertReading = `
INSERT INTO sensor_data (parameter_id, value, timestamp, quality_code)
VALUES ($1, $2, $3, $4)`

const insertAlert = `
INSERT INTO alerts (parameter_id, message, severity, threshold_value, actual_value, is_acknowledged, created_at)
VALUES ($1, $2, $3, $4, $5, false, $6)
RETURNING alert_id`

const selectTableExists = `
SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1`

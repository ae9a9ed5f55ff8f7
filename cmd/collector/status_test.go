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

package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackTD/nextCare/cmd/collector/plc"
	"github.com/stackTD/nextCare/cmd/collector/worker"
)

func TestStatusHandler(t *testing.T) {
	client := plc.NewClient("127.0.0.1", 5020)
	supervisor := worker.NewSupervisor(nil, client, "127.0.0.1", 5020, 5*time.Second)

	request := httptest.NewRequest(http.MethodGet, "/status", nil)
	recorder := httptest.NewRecorder()
	statusHandler(supervisor)(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var status statusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &status))
	assert.False(t, status.Running)
	assert.False(t, status.Connected)
	assert.Equal(t, "127.0.0.1", status.Host)
	assert.Equal(t, 5020, status.Port)
	assert.Equal(t, 5, status.IntervalSeconds)
}

func TestStatusHandlerRejectsNonGet(t *testing.T) {
	client := plc.NewClient("127.0.0.1", 5020)
	supervisor := worker.NewSupervisor(nil, client, "127.0.0.1", 5020, time.Second)

	request := httptest.NewRequest(http.MethodPost, "/status", nil)
	recorder := httptest.NewRecorder()
	statusHandler(supervisor)(recorder, request)

	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

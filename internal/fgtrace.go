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

package internal

import (
	"net/http"
	"time"

	"github.com/felixge/fgtrace"
	"github.com/united-manufacturing-hub/umh-utils/env"
	"go.uber.org/zap"
)

// Initfgtrace exposes /debug/fgtrace on :1337 when DEBUG_ENABLE_FGTRACE is
// set to true. Tracing costs performance, it is strictly a debugging aid.
func Initfgtrace() {
	go func() {
		enabled, err := env.GetAsBool("DEBUG_ENABLE_FGTRACE", false, false)
		if err != nil {
			zap.S().Errorf("DEBUG_ENABLE_FGTRACE is not a valid boolean: %s", err)
			return
		}
		if !enabled {
			zap.S().Debugf("Debug tracing is disabled. Set DEBUG_ENABLE_FGTRACE to true to enable.")
			return
		}

		zap.S().Warnf("fgtrace is enabled. This might hurt performance! Set DEBUG_ENABLE_FGTRACE to false to disable.")
		http.DefaultServeMux.Handle("/debug/fgtrace", fgtrace.Config{})
		server := &http.Server{
			Addr:              ":1337",
			ReadHeaderTimeout: 3 * time.Second,
		}
		if err := server.ListenAndServe(); err != nil {
			zap.S().Errorf("Failed to start fgtrace: %s", err)
		}
	}()
}

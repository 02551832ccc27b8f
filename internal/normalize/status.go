// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package normalize

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/thereiwas/internal/models"
)

// Status decodes a "status" message body.
func Status(body []byte) (models.StatusReport, error) {
	var report models.StatusReport
	if err := json.Unmarshal(body, &report); err != nil {
		return models.StatusReport{}, &FieldError{Field: "body", Reason: err.Error()}
	}
	return report, nil
}

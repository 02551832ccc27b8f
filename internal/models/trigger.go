// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

// ReportTrigger describes what caused a device to publish a location fix.
type ReportTrigger uint8

const (
	// TriggerUnknown covers "?" and every code this server does not know yet.
	TriggerUnknown ReportTrigger = iota
	TriggerPing                            // p: background ping (iOS, Android)
	TriggerCircularRegion                  // c: circular region enter/leave (iOS, Android)
	TriggerCircularRegionWithFollowRegions // C: +follow region enter/leave (iOS)
	TriggerBeaconRegion                    // b: beacon region enter/leave (iOS)
	TriggerReportLocationResponse          // r: response to a reportLocation cmd
	TriggerUserRequest                     // u: manual publish
	TriggerTimerBased                      // t: timer based publish while moving (iOS)
	TriggerFrequentLocationsMonitoring     // v: frequent locations monitoring (iOS)
)

// UnknownTriggerCode is the code assumed when a payload carries no trigger.
const UnknownTriggerCode = "?"

var triggerCodes = [...]string{
	TriggerUnknown:                         UnknownTriggerCode,
	TriggerPing:                            "p",
	TriggerCircularRegion:                  "c",
	TriggerCircularRegionWithFollowRegions: "C",
	TriggerBeaconRegion:                    "b",
	TriggerReportLocationResponse:          "r",
	TriggerUserRequest:                     "u",
	TriggerTimerBased:                      "t",
	TriggerFrequentLocationsMonitoring:     "v",
}

var triggerNames = [...]string{
	TriggerUnknown:                         "UnknownTrigger",
	TriggerPing:                            "Ping",
	TriggerCircularRegion:                  "CircularRegion",
	TriggerCircularRegionWithFollowRegions: "CircularRegionWithFollowRegions",
	TriggerBeaconRegion:                    "BeaconRegion",
	TriggerReportLocationResponse:          "ReportLocationResponse",
	TriggerUserRequest:                     "UserRequest",
	TriggerTimerBased:                      "TimerBased",
	TriggerFrequentLocationsMonitoring:     "FrequentLocationsMonitoring",
}

// ParseReportTrigger maps an OwnTracks trigger code to a ReportTrigger.
// The mapping is total: unrecognised codes yield TriggerUnknown with
// known=false so the caller can log them. "?" is a known code.
func ParseReportTrigger(code string) (trigger ReportTrigger, known bool) {
	switch code {
	case "p":
		return TriggerPing, true
	case "c":
		return TriggerCircularRegion, true
	case "C":
		return TriggerCircularRegionWithFollowRegions, true
	case "b":
		return TriggerBeaconRegion, true
	case "r":
		return TriggerReportLocationResponse, true
	case "u":
		return TriggerUserRequest, true
	case "t":
		return TriggerTimerBased, true
	case "v":
		return TriggerFrequentLocationsMonitoring, true
	case UnknownTriggerCode:
		return TriggerUnknown, true
	default:
		return TriggerUnknown, false
	}
}

// Code returns the single-character storage code.
func (t ReportTrigger) Code() string {
	if int(t) < len(triggerCodes) {
		return triggerCodes[t]
	}
	return UnknownTriggerCode
}

func (t ReportTrigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return triggerNames[TriggerUnknown]
}

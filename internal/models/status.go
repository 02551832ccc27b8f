// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package models

// StatusReport is an OwnTracks "status" message. Only one of the platform
// blocks is normally present.
type StatusReport struct {
	IOS       *IOSStatus     `json:"iOS,omitempty"`
	Android   *AndroidStatus `json:"android,omitempty"`
	RequestID *string        `json:"_id,omitempty"`
}

// IOSStatus carries the iOS app's view of device permissions and versions.
type IOSStatus struct {
	AltimeterAuthorizationStatus         string `json:"altimeterAuthorizationStatus"`
	AltimeterIsRelativeAltitudeAvailable bool   `json:"altimeterIsRelativeAltitudeAvailable"`
	BackgroundRefreshStatus              string `json:"backgroundRefreshStatus"`
	DeviceIdentifierForVendor            string `json:"deviceIdentifierForVendor"`
	DeviceModel                          string `json:"deviceModel"`
	DeviceSystemName                     string `json:"deviceSystemName"`
	DeviceSystemVersion                  string `json:"deviceSystemVersion"`
	DeviceUserInterfaceIdiom             string `json:"deviceUserInterfaceIdiom"`
	Locale                               string `json:"locale"`
	LocaleUsesMetricSystem               bool   `json:"localeUsesMetricSystem"`
	LocationManagerAuthorizationStatus   string `json:"locationManagerAuthorizationStatus"`
	Version                              string `json:"version"`
}

// AndroidStatus carries the Android app's power and permission flags.
type AndroidStatus struct {
	Hibernation       int `json:"hib"`  // app hibernation allowed
	BatteryOptimizing int `json:"bo"`   // battery optimizations active
	LocationPerm      int `json:"loc"`  // location permission level
	PowerSave         int `json:"ps"`   // power save mode
	WiFi              int `json:"wifi"` // wifi enabled
}

// ThereIWas - Location Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/thereiwas

package normalize

import (
	"strconv"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// CanonicalBSSID rewrites a BSSID into upper-case, zero-padded colon form.
//
// Some OwnTracks clients drop leading zeros from octets ("a:2:c" instead of
// "0a:02:0c"). Every colon-separated segment is parsed as a hexadecimal
// octet; segments that do not parse become 00. Canonical input is returned
// unchanged.
func CanonicalBSSID(raw string) string {
	segments := strings.Split(raw, ":")

	var b strings.Builder
	b.Grow(len(segments) * 3)
	for i, segment := range segments {
		if i > 0 {
			b.WriteByte(':')
		}
		octet, err := strconv.ParseUint(segment, 16, 8)
		if err != nil {
			octet = 0
		}
		b.WriteByte(hexDigits[octet>>4])
		b.WriteByte(hexDigits[octet&0x0F])
	}
	return b.String()
}

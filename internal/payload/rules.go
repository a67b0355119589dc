// Package payload validates notification parameters and builds the JSON body
// sent to the FCM legacy HTTP gateway.
package payload

import (
	"strings"

	"github.com/tinywideclouds/go-firebase-push/pkg/push"
)

// IsValid reports whether the parameters describe a sendable notification:
// either a visible alert (non-empty title and body) or a data-only push
// whose data keys are allowed.
func IsValid(p push.Parameters) bool {
	if hasAlert(p) {
		return true
	}
	return p.Data != nil && DataKeysAllowed(p.Data)
}

// DataKeysAllowed rejects the most common gateway-reserved data keys:
// "from" and anything starting with "google" or "gcm". Matching is
// case-sensitive.
//
// This is not the full reserved-word list, only the collisions seen in
// practice.
func DataKeysAllowed(data map[string]any) bool {
	for key := range data {
		if key == "from" || strings.HasPrefix(key, "google") || strings.HasPrefix(key, "gcm") {
			return false
		}
	}
	return true
}

func hasAlert(p push.Parameters) bool {
	return p.Title != nil && *p.Title != "" && p.Body != nil && *p.Body != ""
}

package qdpi

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID prefixes. Every identifier in the system is a prefixed string assigned
// at creation and immutable thereafter.
const (
	PrefixNetwork = "nw_"
	PrefixEpisode = "ep_"
	PrefixItem    = "it_"
	PrefixBond    = "bd_"
	PrefixEvent   = "ev_"
)

// RandomID returns a fresh prefixed identifier: the prefix followed by the
// first 24 hex digits of a UUID4, uppercased.
func RandomID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:24])
}

// Timestamp formats t as the persisted wire timestamp: UTC ISO 8601 with
// millisecond precision and a Z suffix.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

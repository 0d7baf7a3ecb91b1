// Package lease implements the optional claim protocol that lets several
// worker instances poll the same collection without double-processing.
//
// An item is free when leaseExpiresAt is missing, null or not in the future.
// A worker claims an item with a conditional update that repeats the selection
// filter, so a concurrent claim or a completed cycle makes the claim match nothing.
package lease

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Mode selects the concurrency guard of a processor.
type Mode string

const (
	// ModeNone relies on the status filter alone. Safe for one live worker.
	ModeNone Mode = "none"
	// ModeLease claims every item before processing it.
	ModeLease Mode = "lease"
)

const (
	FieldClaimedBy      = "claimedBy"
	FieldLeaseExpiresAt = "leaseExpiresAt"
)

// ParseMode accepts "none", "lease" or empty (none).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeLease:
		return ModeLease, nil
	default:
		return "", fmt.Errorf("unknown claim mode %q", s)
	}
}

// NewOwnerID returns a process-unique worker id.
func NewOwnerID() string {
	return uuid.NewString()
}

// Free reports whether a lease ending at until no longer protects the item at now.
func Free(until *time.Time, now time.Time) bool {
	return until == nil || !until.After(now)
}

// FreeFilter matches documents whose lease is absent or expired.
func FreeFilter(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{FieldLeaseExpiresAt: bson.M{"$exists": false}},
		bson.M{FieldLeaseExpiresAt: nil},
		bson.M{FieldLeaseExpiresAt: bson.M{"$lte": now}},
	}}
}

// WithFree combines a selection filter with FreeFilter.
func WithFree(filter bson.M, now time.Time) bson.M {
	return bson.M{"$and": bson.A{filter, FreeFilter(now)}}
}

// ClaimUpdate sets the lease owner and expiry.
func ClaimUpdate(owner string, until time.Time) bson.M {
	return bson.M{"$set": bson.M{
		FieldClaimedBy:      owner,
		FieldLeaseExpiresAt: until,
	}}
}

const defaultDuration = 2 * time.Minute

// Config selects the claim mode of one processor.
type Config struct {
	Mode     Mode
	Duration time.Duration
}

// LoadConfig reads <section>.claim-mode and <section>.lease-duration.
func LoadConfig(v *viper.Viper, section string) (Config, error) {
	v.SetDefault(section+".claim-mode", string(ModeNone))
	v.SetDefault(section+".lease-duration", defaultDuration)

	mode, err := ParseMode(v.GetString(section + ".claim-mode"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s config: %w", section, err)
	}
	cfg := Config{Mode: mode, Duration: v.GetDuration(section + ".lease-duration")}
	if mode == ModeLease && cfg.Duration <= 0 {
		return Config{}, fmt.Errorf("invalid %s config: lease-duration must be positive in lease mode", section)
	}
	return cfg, nil
}

// Enabled reports whether items must be claimed before processing.
func (c Config) Enabled() bool {
	return c.Mode == ModeLease
}

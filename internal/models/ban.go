package models

// PermanentBanMillis is the sentinel bannedUntil value denoting a permanent
// ban. It is a far-future epoch-millis timestamp rather than a flag so that
// active-ban checks stay a single comparison.
const PermanentBanMillis int64 = 9999999999999

// BanRecord is stored at bannedUsers/{uid}. It is created by a moderator and
// removed either explicitly (unban) or lazily once its expiry is observed to
// have passed.
type BanRecord struct {
	BannedBy    string `json:"bannedBy"`
	BannedUntil int64  `json:"bannedUntil"`
	Timestamp   int64  `json:"timestamp"`
}

// Permanent reports whether the record uses the permanent sentinel.
func (b BanRecord) Permanent() bool {
	return b.BannedUntil >= PermanentBanMillis
}

// ActiveAt reports whether the ban is still in force at the given epoch-millis
// instant.
func (b BanRecord) ActiveAt(nowMillis int64) bool {
	return b.BannedUntil > nowMillis
}

// BanRequest defines the request body for banning a user. DurationHours of
// zero means permanent, matching the duration selector in the widget.
type BanRequest struct {
	UserID        string  `json:"userId" validate:"required"`
	DurationHours float64 `json:"durationHours" validate:"gte=0"`
}

// BannedUserView is a ban joined with its profile for the moderator listing.
type BannedUserView struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatarUrl"`
	BannedBy    string `json:"bannedBy"`
	BannedUntil int64  `json:"bannedUntil"`
	Permanent   bool   `json:"permanent"`
}

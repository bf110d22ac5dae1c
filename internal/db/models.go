package db

import (
	"time"
)

// User is a registered profile. Usernames are deliberately NOT unique at
// the schema level: the registry accepts duplicate registrations and
// lookups resolve to the earliest-inserted row (see UserRepository).
// Rows are immutable after creation; there is no edit or delete path.
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	Username  string    `gorm:"size:64;not null;index" json:"username"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lon       float64   `gorm:"not null" json:"lon"`
	Interests []string  `gorm:"serializer:json" json:"interests"`
	Bio       string    `gorm:"size:512" json:"bio"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Activity is one posting on the activity board. The board is append-only:
// autoincrement ids give the 1-based, gap-free, strictly increasing sequence
// the feed relies on. Username is a soft reference to the roster, with no
// foreign key; the poster may have registered under a duplicate name.
//
// Responses is reserved for a future reply feature and stays empty.
type Activity struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:64;not null;index" json:"username"`
	ActivityType string    `gorm:"size:64;not null" json:"activity_type"`
	Description  string    `gorm:"size:512" json:"description"`
	TimeSlot     string    `gorm:"size:32" json:"time_slot"`
	Location     string    `gorm:"size:128" json:"location"`
	Responses    []string  `gorm:"serializer:json" json:"responses"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"posted_at"`
}

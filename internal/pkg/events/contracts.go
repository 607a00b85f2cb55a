package events

import "time"

const (
	UserProgressAdjustedEvent = "user-progress-adjusted"
	UserAvatarUpdatedEvent    = "user-avatar-updated"
	UserCooldownResetEvent    = "user-cooldown-reset"
)

// Targeted is implemented by payloads that concern a single user.
type Targeted interface {
	TargetUser() string
}

type UserProgressAdjusted struct {
	Username     string    `json:"username"`
	BalanceDelta *int64    `json:"balanceDelta,omitempty"`
	XpDelta      *int64    `json:"xpDelta,omitempty"`
	Level        *int64    `json:"level,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	UpdatedBy    string    `json:"updatedBy"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (e UserProgressAdjusted) TargetUser() string {
	return e.Username
}

type UserAvatarUpdated struct {
	Username  string    `json:"username"`
	AvatarUrl string    `json:"avatarUrl"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e UserAvatarUpdated) TargetUser() string {
	return e.Username
}

type UserCooldownReset struct {
	Username  string    `json:"username"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e UserCooldownReset) TargetUser() string {
	return e.Username
}

package models

// InviteRedeem is the payload a freshly joined participant submits to
// credit the referrer whose code they followed.
type InviteRedeem struct {
	Code string `json:"code" binding:"required,min=4,max=32"`
}

// InviteStats summarizes a participant's referral standing within one giveaway.
type InviteStats struct {
	GiveawayID   string `json:"giveaway_id"`
	UserID       int64  `json:"user_id"`
	InviteCode   string `json:"invite_code"`
	InviteCount  int    `json:"invite_count"`
	InviteCap    int    `json:"invite_cap"`
	PointsEarned int    `json:"points_earned"`
}

// InviteRedeemResult reports the credit that was applied.
type InviteRedeemResult struct {
	GiveawayID    string `json:"giveaway_id"`
	ReferrerID    int64  `json:"referrer_id"`
	InviteeID     int64  `json:"invitee_id"`
	ReferrerBonus int    `json:"referrer_bonus"`
	InviteeBonus  int    `json:"invitee_bonus"`
}

package dto

type ReferralStatsResponse struct {
	Code      string `json:"code"`
	InviteURL string `json:"inviteUrl"`
	Clicks    int64  `json:"clicks"`
	Signups   int64  `json:"signups"`
}

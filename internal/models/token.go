package models

// TokenDetails holds a freshly issued access/refresh token pair together
// with the unix expiry timestamps of each.
type TokenDetails struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AtExpires    int64  `json:"at_expires"`
	RtExpires    int64  `json:"rt_expires"`
}

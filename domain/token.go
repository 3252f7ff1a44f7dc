package domain

// AccessTokenRecord is the persisted shape of a machine-client access
// token. A record is valid only while IssuedAtDay equals the current
// UTC calendar date and ExpiresAt is more than a minute away. Records
// are overwritten whole on refresh, never mutated in place.
type AccessTokenRecord struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   int64  `json:"expiresAt"` // epoch milliseconds
	IssuedAtDay string `json:"issuedAtDay"`
}

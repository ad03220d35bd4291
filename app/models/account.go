package models

// Account is the stored credential record for a user, keyed by email.
// Accounts only travel through the key-value store; API responses never
// serialise this type directly, so the hash stays server-side.
type Account struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

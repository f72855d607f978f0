package entity

// Entitlement records a user's standing eligibility to re-arm the unlock
// session without paying again. Absence of the document means not entitled.
type Entitlement struct {
	UserID      string `json:"user_id" firestore:"userId"`
	MapUnlocked bool   `json:"map_unlocked" firestore:"mapUnlocked"`
}

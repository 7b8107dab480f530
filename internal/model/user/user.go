package user

// User mirrors the authenticated principal supplied by the identity
// subsystem. SpaceTaken is owned by this service: every size-changing
// file mutation adjusts it in the same transaction.
type User struct {
	ID                uint32 `json:"id"`
	Username          string `json:"username"`
	SpaceTaken        int64  `json:"space_taken"`
	SubscriptionSpace int64  `json:"subscription_space"`
	Privileged        bool   `json:"privileged"`
}

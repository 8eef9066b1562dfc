package domain

// CanMutate reports whether the requester may update or delete a campaign
// owned by ownerID. Owners may always mutate; admins may mutate anything.
func CanMutate(requesterID int64, role Role, ownerID int64) bool {
	return requesterID == ownerID || role == RoleAdmin
}

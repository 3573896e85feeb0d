package fcuid

// ValidateAccess applies the default-deny gate for sensitive lookups.
//
// When resource is nil the caller is only checking identifier syntax and is
// always allowed. When resource data is requested, the requester must be
// authenticated; anything else is denied.
//
// The policy is deliberately a coarse binary gate. Richer policies (org or
// team membership) belong behind the Requester.Capabilities seam and must
// not weaken the deny-by-default baseline.
func ValidateAccess(identifier string, requester Requester, resource any) *ValidationError {
	if resource == nil {
		return nil
	}
	if requester.Authenticated {
		return nil
	}
	return ErrAccessDenied("Access denied. Authentication required.")
}

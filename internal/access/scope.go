package access

// Scope returns the records of kind that principal may read, in input order.
// The input slice is never modified and the result never aliases it.
func Scope[T Record](policy *Policy, principal Principal, kind ResourceKind, records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if policy.Can(principal, kind, ActionRead, r.OwnerID()) {
			out = append(out, r)
		}
	}
	return out
}

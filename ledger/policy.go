/*
policy.go - Who may see and pay what

PURPOSE:
  Pure predicates over profiles, contracts and jobs. No storage access.
*/
package ledger

// HasAccess reports whether p is a party to c: the client on the client side,
// or the contractor on the contractor side. A profile whose ID matches the
// other side's field never has access.
func HasAccess(p Profile, c Contract) bool {
	switch p.Role {
	case RoleClient:
		return p.ID == c.ClientID
	case RoleContractor:
		return p.ID == c.ContractorID
	}
	return false
}

// canPay reports whether job under contract is payable by clientID right now.
// All failures look the same to the caller.
func canPay(clientID ProfileID, job Job, contract Contract) bool {
	return contract.ClientID == clientID &&
		contract.Status == ContractInProgress &&
		!job.Paid
}

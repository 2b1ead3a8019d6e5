package policy

// Normalize converts a caller-supplied policy request into the canonical
// internal form: every contract method and message policy is marked
// authorized (a request means "I want to be allowed to do this"), and
// Verified is reset to false until an authorization service confirms the
// set.
//
// Absent Contracts or Messages stay absent. Normalize never mutates its
// input.
func Normalize(req Policies) Policies {
	out := Clone(req)
	out.Verified = false

	for addr, contract := range out.Contracts {
		for i := range contract.Methods {
			contract.Methods[i].Authorized = true
		}
		out.Contracts[addr] = contract
	}

	for i := range out.Messages {
		out.Messages[i].Authorized = true
	}

	return out
}

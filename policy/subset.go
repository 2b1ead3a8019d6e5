package policy

import "bytes"

// ValidateSubset reports whether every policy in requested exists in granted
// and was authorized there. It is the escalation guard: a client whose
// requested set grew beyond what the authorization service confirmed must
// not keep using the old grant.
//
// Contract addresses are compared by exact string match with no case
// normalization, so "0xABC" does not satisfy a request for "0xabc". Message
// policies match by serialized-JSON equality of their domain and types
// (whitespace-insensitive, key-order-sensitive).
//
// A requested set with neither contracts nor messages is trivially
// satisfiable and always passes.
func ValidateSubset(requested, granted Policies) bool {
	if requested.Contracts != nil {
		if granted.Contracts == nil {
			return false
		}
		for addr, contract := range requested.Contracts {
			grantedContract, ok := granted.Contracts[addr]
			if !ok {
				return false
			}
			for _, method := range contract.Methods {
				if !methodGranted(grantedContract, method.Entrypoint) {
					return false
				}
			}
		}
	}

	if requested.Messages != nil {
		if granted.Messages == nil {
			return false
		}
		for _, msg := range requested.Messages {
			if !messageGranted(granted.Messages, msg) {
				return false
			}
		}
	}

	return true
}

func methodGranted(contract ContractPolicy, entrypoint string) bool {
	for _, method := range contract.Methods {
		if method.Entrypoint == entrypoint && method.Authorized {
			return true
		}
	}
	return false
}

func messageGranted(granted []MessagePolicy, requested MessagePolicy) bool {
	reqDomain := compactRaw(requested.Domain)
	reqTypes := compactRaw(requested.Types)

	for _, candidate := range granted {
		if !candidate.Authorized {
			continue
		}
		if bytes.Equal(compactRaw(candidate.Domain), reqDomain) &&
			bytes.Equal(compactRaw(candidate.Types), reqTypes) {
			return true
		}
	}
	return false
}

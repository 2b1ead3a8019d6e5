package policy

import "encoding/json"

// Policies is the canonical internal representation of a session policy set.
//
// A nil Contracts map or nil Messages slice means "no constraint requested"
// and is deliberately distinct from an empty one. Verified reports whether
// the set has been confirmed by an authorization service; freshly normalized
// requests always carry Verified=false.
type Policies struct {
	Verified  bool                      `json:"verified"`
	Contracts map[string]ContractPolicy `json:"contracts,omitempty"`
	Messages  []MessagePolicy           `json:"messages,omitempty"`
}

// ContractPolicy scopes a session to a set of methods on one contract
// address. Name and Description are presentation metadata carried through
// untouched.
type ContractPolicy struct {
	Name        string         `json:"name,omitempty"`
	Description string         `json:"description,omitempty"`
	Methods     []MethodPolicy `json:"methods"`
}

// MethodPolicy authorizes a single contract entrypoint.
//
// Authorized is meaningful only inside a stored grant snapshot, where it
// reflects what the authorization service actually granted. Normalize forces
// it to true on requested sets.
type MethodPolicy struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Entrypoint  string `json:"entrypoint"`
	Authorized  bool   `json:"authorized,omitempty"`
}

// MessagePolicy authorizes signing one off-chain typed-data message shape,
// identified by its domain and type definitions.
//
// Domain and Types are kept as raw JSON: subset matching compares their
// serialized form byte for byte, so re-encoding them through Go maps would
// change matching behavior.
type MessagePolicy struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Domain      json.RawMessage `json:"domain"`
	Types       json.RawMessage `json:"types"`
	PrimaryType string          `json:"primaryType"`
	Authorized  bool            `json:"authorized,omitempty"`
}

// Clone returns a deep copy of p. The copy shares no mutable state with the
// original.
func Clone(p Policies) Policies {
	out := Policies{Verified: p.Verified}

	if p.Contracts != nil {
		out.Contracts = make(map[string]ContractPolicy, len(p.Contracts))
		for addr, contract := range p.Contracts {
			out.Contracts[addr] = cloneContract(contract)
		}
	}

	if p.Messages != nil {
		out.Messages = make([]MessagePolicy, len(p.Messages))
		for i, msg := range p.Messages {
			out.Messages[i] = cloneMessage(msg)
		}
	}

	return out
}

func cloneContract(c ContractPolicy) ContractPolicy {
	next := c
	if c.Methods != nil {
		next.Methods = make([]MethodPolicy, len(c.Methods))
		copy(next.Methods, c.Methods)
	}
	return next
}

func cloneMessage(m MessagePolicy) MessagePolicy {
	next := m
	next.Domain = cloneRaw(m.Domain)
	next.Types = cloneRaw(m.Types)
	return next
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

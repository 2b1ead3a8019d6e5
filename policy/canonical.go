package policy

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// WirePolicy is one entry of the canonical policy encoding handed to the
// external signer. Contract entries carry Target and Method; message entries
// carry TypedData.
type WirePolicy struct {
	Target    string          `json:"target,omitempty"`
	Method    string          `json:"method,omitempty"`
	TypedData json.RawMessage `json:"typedData,omitempty"`
}

// ToWirePolicies flattens a policy set into the canonical ordered list
// consumed by the signing bridge.
//
// The output is a pure function of the policy content: contract addresses
// are ordered case-insensitively by their string value (ties broken by the
// exact string so the order stays total), methods within a contract are
// ordered by entrypoint, and message entries are ordered by their compacted
// serialization. Two semantically identical sets built in different map or
// slice orders therefore encode byte-identically, which the downstream
// commitment step depends on.
//
// An absent Contracts map or Messages slice contributes nothing; a fully
// absent set encodes to an empty list, never an error.
func ToWirePolicies(p Policies) []WirePolicy {
	out := make([]WirePolicy, 0, wireEntryCount(p))

	addrs := make([]string, 0, len(p.Contracts))
	for addr := range p.Contracts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		li, lj := strings.ToLower(addrs[i]), strings.ToLower(addrs[j])
		if li != lj {
			return li < lj
		}
		return addrs[i] < addrs[j]
	})

	for _, addr := range addrs {
		methods := make([]MethodPolicy, len(p.Contracts[addr].Methods))
		copy(methods, p.Contracts[addr].Methods)
		sort.Slice(methods, func(i, j int) bool {
			return methods[i].Entrypoint < methods[j].Entrypoint
		})

		for _, m := range methods {
			out = append(out, WirePolicy{Target: addr, Method: m.Entrypoint})
		}
	}

	if len(p.Messages) > 0 {
		typed := make([]json.RawMessage, 0, len(p.Messages))
		for _, msg := range p.Messages {
			typed = append(typed, compactMessage(msg))
		}
		sort.Slice(typed, func(i, j int) bool {
			return bytes.Compare(typed[i], typed[j]) < 0
		})
		for _, td := range typed {
			out = append(out, WirePolicy{TypedData: td})
		}
	}

	return out
}

func wireEntryCount(p Policies) int {
	n := len(p.Messages)
	for _, contract := range p.Contracts {
		n += len(contract.Methods)
	}
	return n
}

func compactMessage(m MessagePolicy) json.RawMessage {
	payload := struct {
		Domain      json.RawMessage `json:"domain"`
		Types       json.RawMessage `json:"types"`
		PrimaryType string          `json:"primaryType"`
	}{
		Domain:      compactRaw(m.Domain),
		Types:       compactRaw(m.Types),
		PrimaryType: m.PrimaryType,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return encoded
}

// compactRaw strips insignificant whitespace. It does not reorder keys: the
// serialized form is the matching identity.
func compactRaw(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

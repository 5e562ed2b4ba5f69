package contract

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/sha3"
)

// Selector returns the 4-byte function selector of a canonical signature
// such as "buyTickets(uint256,uint256)", 0x-prefixed.
func Selector(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// MethodInfo is a printable summary of one ABI method.
type MethodInfo struct {
	Name      string
	Signature string
	Selector  string
	Payable   bool
	ReadOnly  bool
}

// Methods lists the kind's functions, reads first, each group sorted by name.
func (k *Kind) Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(k.ABI.Methods))
	for _, m := range k.ABI.Methods {
		out = append(out, MethodInfo{
			Name:      m.Name,
			Signature: m.Sig,
			Selector:  Selector(m.Sig),
			Payable:   m.IsPayable(),
			ReadOnly:  m.IsConstant(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReadOnly != out[j].ReadOnly {
			return out[i].ReadOnly
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MethodByData names the method whose selector prefixes data, or "".
func (k *Kind) MethodByData(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	m, err := k.ABI.MethodById(data[:4])
	if err != nil {
		return ""
	}
	return m.Name
}

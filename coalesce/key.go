package coalesce

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Key builds a coalescing key from an operation name and its arguments.
// Arguments are serialized as JSON (map keys sorted) and hashed, so equal
// arguments always produce the same key and different ones do not collide.
// A nil args value yields the bare operation name.
func Key(op string, args interface{}) string {
	if args == nil {
		return op
	}
	b, err := json.Marshal(args)
	if err != nil {
		b = []byte(fmt.Sprintf("%#v", args))
	}
	sum := blake3.Sum256(b)
	return op + ":" + hex.EncodeToString(sum[:16])
}

// ContentKey builds a key from binary content plus optional qualifiers such
// as the upload purpose. Two different files never share a key even when
// their names match.
func ContentKey(op string, data []byte, parts ...string) string {
	h := blake3.New()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(data)
	return op + ":" + hex.EncodeToString(h.Sum(nil)[:16])
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyVersion is mixed into every key. Bump it when layout geometry or
// renderer output changes so entries written by older builds are ignored.
const keyVersion = 1

// hashKey returns "<kind>:<sha256 of version and parts>". Parts must be
// JSON-encodable; struct fields encode in declaration order, which keeps
// keys stable.
func hashKey(kind string, parts ...any) string {
	data, err := json.Marshal(struct {
		Version int   `json:"v"`
		Parts   []any `json:"p"`
	}{keyVersion, parts})
	if err != nil {
		// Only reachable with NaN or Inf options; fall back to the printed form.
		data = fmt.Appendf(nil, "v%d:%v", keyVersion, parts)
	}
	return kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// keyVersion is hashed into every key. Bump it when a stage's cached
// encoding changes so old entries stop matching.
const keyVersion = 1

// hashKey returns "stage:sha256(version, parts...)".
func hashKey(stage string, parts ...any) string {
	data, _ := json.Marshal(append([]any{keyVersion}, parts...))
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", stage, hex.EncodeToString(sum[:]))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes a design or rule document with insignificant whitespace
// removed, so a reformatted file keys the same results. Data that is not
// valid JSON is hashed as is.
func HashJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Hash(data)
	}
	return Hash(buf.Bytes())
}

// InputHash combines the hashes of a design and its rules into the hash
// that keys the stages after expansion.
func InputHash(designHash, rulesHash string) string {
	return Hash([]byte(designHash + ":" + rulesHash))
}

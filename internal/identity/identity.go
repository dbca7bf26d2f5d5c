package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	idPrefix    = "trans_"
	idSuffixLen = 6
)

// HashHex returns the SHA-256 digest of b as lowercase hex.
func HashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// NewContractID derives a contract ID from the request content plus a
// nanosecond wall-clock nonce: "trans_" followed by the first six hex
// characters of the digest. The nonce makes IDs effectively unique per
// call even for byte-identical requests; with 2^24 possible suffixes,
// collisions are tolerated rather than prevented (the ledger does not
// enforce ID uniqueness).
func NewContractID(sourceText, targetLanguage, workflow, flow string, now time.Time) string {
	content := strings.Join([]string{sourceText, targetLanguage, workflow, flow}, "|")
	nonce := strconv.FormatInt(now.UTC().UnixNano(), 10)
	return idPrefix + HashHex([]byte(content+nonce))[:idSuffixLen]
}

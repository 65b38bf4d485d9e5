package util

import (
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// HashAlgorithm names the digest used for key fragments. It only spreads the
// key space; nothing here is a security boundary.
const HashAlgorithm = "SHA1"

// HashHex returns the upper-case hex SHA-1 of b.
func HashHex(b []byte) string {
	sum := sha1.Sum(b)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// IDsHash returns an order-independent digest of ids: sorted ascending,
// joined with ", ", hashed. Empty input yields "". Duplicates are kept.
func IDsHash(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	s := make([]int64, len(ids))
	copy(s, ids)
	slices.Sort(s)

	var b strings.Builder
	for i, id := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return HashHex([]byte(b.String()))
}

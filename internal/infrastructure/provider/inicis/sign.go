package inicis

import (
	"crypto/sha512"
	"encoding/hex"
)

// signRequest builds the INICIS v2 billing authentication hash: the
// SHA512 hex digest of apiKey + mid + "billing" + timestamp + detailJSON,
// in exactly that order. The gateway rejects silently on any deviation,
// so the concatenation order here must track the INICIS documentation.
func signRequest(apiKey, mid, timestamp string, detailJSON []byte) string {
	plain := apiKey + mid + "billing" + timestamp + string(detailJSON)
	sum := sha512.Sum512([]byte(plain))
	return hex.EncodeToString(sum[:])
}

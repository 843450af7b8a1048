package auth

import "golang.org/x/crypto/md4"

// md4Sum returns the MD4 digest of data, used to derive the NT hash from the
// UTF-16LE password per [MS-NLMP] 3.3.1.
func md4Sum(data []byte) []byte {
	h := md4.New()
	h.Write(data)
	return h.Sum(nil)
}

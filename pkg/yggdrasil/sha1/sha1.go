// Package sha1 implements the non-standard hex digest that Minecraft uses
// during the encryption handshake. The 20 byte SHA-1 sum is interpreted as a
// signed big-endian integer, matching Java's BigInteger(byte[]) constructor,
// and rendered as a possibly negative hex string.
package sha1

import (
	"crypto/sha1"
	"fmt"
	"hash"
	"strings"
)

type Hash struct {
	hash.Hash
}

func NewHash() Hash {
	return Hash{
		Hash: sha1.New(),
	}
}

func (h Hash) Update(b []byte) {
	// hash.Hash documents that Write never returns an error
	_, _ = h.Write(b)
}

// HexDigest finalizes the hash and formats the digest with DigestString.
func (h Hash) HexDigest() string {
	return DigestString(h.Sum(nil))
}

// DigestString formats a raw digest as the hex string of its two's
// complement signed integer value. Negative values carry a "-" prefix;
// leading zero digits are stripped; an all-zero digest yields "0".
func DigestString(digest []byte) string {
	hashBytes := make([]byte, len(digest))
	copy(hashBytes, digest)

	negative := (hashBytes[0] & 0x80) == 0x80
	if negative {
		// two's complement negation, big endian
		carry := true
		for i := len(hashBytes) - 1; i >= 0; i-- {
			hashBytes[i] = ^hashBytes[i]
			if carry {
				carry = hashBytes[i] == 0xff
				hashBytes[i]++
			}
		}
	}

	hashString := strings.TrimLeft(fmt.Sprintf("%x", hashBytes), "0")
	if hashString == "" {
		hashString = "0"
	}

	if negative {
		hashString = "-" + hashString
	}

	return hashString
}

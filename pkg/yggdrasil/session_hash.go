package yggdrasil

import (
	"github.com/minebase/yggdrasil/pkg/yggdrasil/sha1"
)

// SharedSecret is the AES key negotiated during the encryption handshake.
// The protocol fixes its length at 16 bytes.
type SharedSecret [16]byte

// SessionHash computes the server hash that binds a session to a server
// identity, shared secret and public key. The three inputs are fed into
// SHA-1 in exactly this order; modern protocol versions always pass an
// empty serverID.
func SessionHash(serverID string, sharedSecret SharedSecret, publicKey []byte) string {
	hash := sha1.NewHash()
	hash.Update([]byte(serverID))
	hash.Update(sharedSecret[:])
	hash.Update(publicKey)
	return hash.HexDigest()
}

// Package identity derives stable storage keys for tracked resources.
//
// A key is a pure function of the (namespace, identifier) pair: the natural
// name is recomputed into the key on every request, so no name-to-key lookup
// table is needed anywhere.
package identity

import (
	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// separator joins namespace and identifier before hashing. A NUL byte can't
// appear in either part (both come from URL path segments), so distinct
// pairs can't fold into the same input: ("a", "b_c") and ("a_b", "c") hash
// differently.
const separator = "\x00"

// keyspace namespaces the SHA-1 UUIDs so keys can't collide with any other
// name-based UUID usage sharing a store.
var keyspace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("views.counter"))

// Resolve maps a (namespace, identifier) pair to its storage key. It is
// deterministic across processes and over time, consults no state, and has
// no error conditions.
func Resolve(namespace, identifier string) string {
	u := uuid.NewSHA1(keyspace, []byte(namespace+separator+identifier))
	return shortuuid.DefaultEncoder.Encode(u)
}

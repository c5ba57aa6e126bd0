// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package vault

import "github.com/cespare/xxhash/v2"

// digest derives the SessionStore key for an identity. It is a fast,
// non-cryptographic hash: collision resistance against an adversary who
// cannot already read the session store is not a requirement, it only
// needs to distribute identities evenly across map/Redis keys.
func digest(identity string) uint64 {
	return xxhash.Sum64String(identity)
}

// xref computes the cross-reference binding hash over a credential's raw
// signature bytes. A refresh credential's Xref claim is xref of its auth
// credential's signature; an auth credential's Xref claim is xref of the
// refresh signature it was issued against (the provisional refresh
// signature at Login, the live refresh signature at Renew). Resolve binds
// an auth credential to its session by comparing xref of the credential's
// own signature with RefreshRecord.XrefOfAuth.
func xref(signature []byte) uint64 {
	return xxhash.Sum64(signature)
}

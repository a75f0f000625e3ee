package token

import "errors"

// ErrNotTransferable is returned for any token movement that is not a
// strict mint or burn. Membership tokens are soulbound.
var ErrNotTransferable = errors.New("token: membership tokens are not transferable")

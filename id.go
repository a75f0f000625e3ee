package memberledger

import "github.com/xraph/memberledger/id"

// ID is the primary identifier type for all membership ledger entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

package paytoken

import (
	"context"
	"errors"
	"sync"

	"github.com/xraph/memberledger/types"
)

// ErrInsufficientBalance is returned by InMemory for transfers that
// exceed the sender's balance.
var ErrInsufficientBalance = errors.New("paytoken: insufficient balance")

// ErrInsufficientAllowance is returned by InMemory for TransferFrom
// calls that exceed the spender's allowance.
var ErrInsufficientAllowance = errors.New("paytoken: insufficient allowance")

// InMemory is a reference Token implementation backed by maps. It is
// used by the test suite and by examples; production deployments adapt
// a real token client to the Token interface.
type InMemory struct {
	mu        sync.Mutex
	decimals  uint8
	caller    types.Address // implicit sender for Transfer / spender for TransferFrom
	balances  map[types.Address]types.Amount
	allowance map[types.Address]map[types.Address]types.Amount
}

var _ Token = (*InMemory)(nil)

// NewInMemory creates an in-memory payment token with the given decimals.
func NewInMemory(decimals uint8) *InMemory {
	return &InMemory{
		decimals:  decimals,
		balances:  make(map[types.Address]types.Amount),
		allowance: make(map[types.Address]map[types.Address]types.Amount),
	}
}

// SetCaller fixes the identity used as sender for Transfer and as
// spender for TransferFrom (the ledger's custody address in tests).
func (t *InMemory) SetCaller(addr types.Address) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.caller = addr.Normalize()
}

// Mint credits an address. Test helper, not part of the Token interface.
func (t *InMemory) Mint(addr types.Address, amount types.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[addr.Normalize()] += amount
}

// Approve grants spender an allowance over owner's balance.
func (t *InMemory) Approve(owner, spender types.Address, amount types.Amount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner = owner.Normalize()
	if t.allowance[owner] == nil {
		t.allowance[owner] = make(map[types.Address]types.Amount)
	}
	t.allowance[owner][spender.Normalize()] = amount
}

// Transfer implements Token, moving funds from the configured caller.
func (t *InMemory) Transfer(_ context.Context, to types.Address, amount types.Amount) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.move(t.caller, to.Normalize(), amount)
}

// TransferFrom implements Token.
func (t *InMemory) TransferFrom(_ context.Context, from, to types.Address, amount types.Amount) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	from, to = from.Normalize(), to.Normalize()
	if t.allowance[from][t.caller] < amount {
		return false, ErrInsufficientAllowance
	}

	ok, err := t.move(from, to, amount)
	if !ok {
		return ok, err
	}
	t.allowance[from][t.caller] -= amount
	return true, nil
}

// BalanceOf implements Token.
func (t *InMemory) BalanceOf(_ context.Context, addr types.Address) (types.Amount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[addr.Normalize()], nil
}

// Decimals implements Token.
func (t *InMemory) Decimals(_ context.Context) (uint8, error) {
	return t.decimals, nil
}

// move requires t.mu held.
func (t *InMemory) move(from, to types.Address, amount types.Amount) (bool, error) {
	if t.balances[from] < amount {
		return false, ErrInsufficientBalance
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return true, nil
}

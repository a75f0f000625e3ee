// Package token implements the non-transferable membership ownership token.
//
// Exactly one live token exists per member address. Tokens move only at
// mint (from the zero address) and burn (to the zero address); every
// other movement is rejected by Guard, independent of which ledger
// operation attempted it.
package token

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/xraph/memberledger/id"
	"github.com/xraph/memberledger/types"
)

// Metadata is the descriptive state attached to a live token. ImageURI
// is fixed at mint; Name, Description and PlanID follow the member's
// plan on upgrade.
type Metadata struct {
	ImageURI    string    `json:"image_uri"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PlanID      int       `json:"plan_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Token is one membership ownership token.
type Token struct {
	ID       id.TokenID    `json:"id"`
	Owner    types.Address `json:"owner"`
	Metadata Metadata      `json:"metadata"`
}

// Guard validates a token movement. Only strict mints (from the zero
// address) and strict burns (to the zero address) are permitted.
func Guard(from, to types.Address) error {
	if from.IsZero() || to.IsZero() {
		return nil
	}
	return ErrNotTransferable
}

// descriptor is the JSON document embedded in a descriptor data URI.
type descriptor struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Image       string                `json:"image"`
	Attributes  []descriptorAttribute `json:"attributes"`
}

type descriptorAttribute struct {
	TraitType string `json:"trait_type"`
	Value     int    `json:"value"`
}

// DescriptorURI returns a self-contained data URI embedding the token's
// name, description, image and plan-level attribute as JSON.
func (t *Token) DescriptorURI() (string, error) {
	doc := descriptor{
		Name:        t.Metadata.Name,
		Description: t.Metadata.Description,
		Image:       t.Metadata.ImageURI,
		Attributes: []descriptorAttribute{
			{TraitType: "Plan Level", Value: t.Metadata.PlanID},
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	return "data:application/json;base64," + base64.StdEncoding.EncodeToString(raw), nil
}

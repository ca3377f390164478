// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2025, NASD Inc. All rights reserved.
// Use of this software is governed by the Business Source License included
// in the LICENSE file of this repository and at www.mariadb.com/bsl11.
//
// ANY USE OF THE LICENSED WORK IN VIOLATION OF THIS LICENSE WILL AUTOMATICALLY
// TERMINATE YOUR RIGHTS UNDER THIS LICENSE FOR THE CURRENT AND ALL OTHER
// VERSIONS OF THE LICENSED WORK.
//
// THIS LICENSE DOES NOT GRANT YOU ANY RIGHT IN ANY TRADEMARK OR LOGO OF
// LICENSOR OR ITS AFFILIATES (PROVIDED THAT YOU MAY USE A TRADEMARK OR LOGO OF
// LICENSOR AS EXPRESSLY REQUIRED BY THIS LICENSE).
//
// TO THE EXTENT PERMITTED BY APPLICABLE LAW, THE LICENSED WORK IS PROVIDED ON
// AN "AS IS" BASIS. LICENSOR HEREBY DISCLAIMS ALL WARRANTIES AND CONDITIONS,
// EXPRESS OR IMPLIED, INCLUDING (WITHOUT LIMITATION) WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE, NON-INFRINGEMENT, AND
// TITLE.

package keeper

import (
	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	"cosmossdk.io/core/event"
	"cosmossdk.io/core/header"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

// Keeper manages a single vault instance: its durable state, the share and
// underlying denominations it accounts for, and the counterpart vaults it may
// swap against.
type Keeper struct {
	underlyingDenom string
	shareDenom      string

	store store.KVStoreService

	logger  log.Logger
	header  header.Service
	event   event.Service
	address address.Codec
	bank    types.BankKeeper

	counterparts map[string]vault.Counterpart

	Core      collections.Item[vault.CoreState]
	Config    collections.Item[vault.ConfigState]
	Emergency collections.Item[vault.EmergencyState]

	// Pending governance changes, one optional slot per category. Presence
	// of the item means a change is awaiting its timelock.
	PendingPrice     collections.Item[vault.PendingPrice]
	PendingRoles     collections.Item[vault.PendingRoles]
	PendingFees      collections.Item[vault.PendingFees]
	PendingLimits    collections.Item[vault.PendingLimits]
	PendingWhitelist collections.Item[vault.PendingWhitelist]
	PendingCooldowns collections.Item[vault.PendingCooldowns]

	Withdrawals      collections.Map[uint64, vault.WithdrawalRequest]
	WithdrawalNextID collections.Item[uint64]
	Whitelist        collections.Map[[]byte, bool]
	AllowlistMints   collections.Map[string, bool]
}

func NewKeeper(
	underlyingDenom string,
	shareDenom string,
	store store.KVStoreService,
	logger log.Logger,
	header header.Service,
	event event.Service,
	address address.Codec,
	bank types.BankKeeper,
) *Keeper {
	builder := collections.NewSchemaBuilder(store)

	keeper := &Keeper{
		underlyingDenom: underlyingDenom,
		shareDenom:      shareDenom,

		store: store,

		logger:  logger.With("module", types.ModuleName),
		header:  header,
		event:   event,
		address: address,
		bank:    bank,

		counterparts: make(map[string]vault.Counterpart),

		Core:      collections.NewItem(builder, vault.CoreStateKey, "core_state", vault.JSONValue[vault.CoreState]()),
		Config:    collections.NewItem(builder, vault.ConfigStateKey, "config_state", vault.JSONValue[vault.ConfigState]()),
		Emergency: collections.NewItem(builder, vault.EmergencyStateKey, "emergency_state", vault.JSONValue[vault.EmergencyState]()),

		PendingPrice:     collections.NewItem(builder, vault.PendingPriceKey, "pending_price", vault.JSONValue[vault.PendingPrice]()),
		PendingRoles:     collections.NewItem(builder, vault.PendingRolesKey, "pending_roles", vault.JSONValue[vault.PendingRoles]()),
		PendingFees:      collections.NewItem(builder, vault.PendingFeesKey, "pending_fees", vault.JSONValue[vault.PendingFees]()),
		PendingLimits:    collections.NewItem(builder, vault.PendingLimitsKey, "pending_limits", vault.JSONValue[vault.PendingLimits]()),
		PendingWhitelist: collections.NewItem(builder, vault.PendingWhitelistKey, "pending_whitelist", vault.JSONValue[vault.PendingWhitelist]()),
		PendingCooldowns: collections.NewItem(builder, vault.PendingCooldownsKey, "pending_cooldowns", vault.JSONValue[vault.PendingCooldowns]()),

		Withdrawals:      collections.NewMap(builder, vault.WithdrawalPrefix, "withdrawals", collections.Uint64Key, vault.JSONValue[vault.WithdrawalRequest]()),
		WithdrawalNextID: collections.NewItem(builder, vault.WithdrawalNextIDKey, "withdrawal_next_id", collections.Uint64Value),
		Whitelist:        collections.NewMap(builder, vault.WhitelistPrefix, "whitelist", collections.BytesKey, collections.BoolValue),
		AllowlistMints:   collections.NewMap(builder, vault.AllowlistPrefix, "allowlist_mints", collections.StringKey, collections.BoolValue),
	}

	_, err := builder.Build()
	if err != nil {
		panic(err)
	}

	return keeper
}

// SetBankKeeper overwrites the bank keeper used in this module.
func (k *Keeper) SetBankKeeper(bankKeeper types.BankKeeper) {
	k.bank = bankKeeper
}

// RegisterCounterpart makes another vault available as a swap destination,
// keyed by its share denomination.
func (k *Keeper) RegisterCounterpart(counterpart vault.Counterpart) {
	k.counterparts[counterpart.ShareDenom()] = counterpart
}

// UnderlyingDenom returns the configured underlying denomination.
func (k *Keeper) UnderlyingDenom() string {
	return k.underlyingDenom
}

// ShareDenom returns the vault's share denomination.
func (k *Keeper) ShareDenom() string {
	return k.shareDenom
}

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

package mocks

import (
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec/address"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/keeper"
	"github.com/dmtrbch/stoken-demo/types"
)

const (
	UnderlyingDenom = "uusdc"
	ShareDenom      = "ustk"
	// PairShareDenom is the share denom of the second vault built by
	// VaultKeeperPair.
	PairShareDenom = "ustkb"
)

// VaultKeeper builds a vault keeper on an in-memory store wired with the
// given bank, plus a context carrying that store.
func VaultKeeper(bank types.BankKeeper) (*keeper.Keeper, sdk.Context) {
	key := storetypes.NewKVStoreKey(types.ModuleName)
	tkey := storetypes.NewTransientStoreKey("transient_" + types.ModuleName)
	ctx := testutil.DefaultContext(key, tkey)

	return newKeeper(key, bank, UnderlyingDenom, ShareDenom), ctx
}

// VaultKeeperPair builds two vault keepers over the same underlying denom,
// registered with each other as swap counterparts, sharing one context.
func VaultKeeperPair(bank types.BankKeeper) (*keeper.Keeper, *keeper.Keeper, sdk.Context) {
	keyA := storetypes.NewKVStoreKey(types.ModuleName)
	keyB := storetypes.NewKVStoreKey(types.ModuleName + "_pair")
	tkey := storetypes.NewTransientStoreKey("transient_" + types.ModuleName)

	ctx := testutil.DefaultContextWithKeys(
		map[string]*storetypes.KVStoreKey{
			keyA.Name(): keyA,
			keyB.Name(): keyB,
		},
		map[string]*storetypes.TransientStoreKey{
			tkey.Name(): tkey,
		},
		nil,
	)

	vaultA := newKeeper(keyA, bank, UnderlyingDenom, ShareDenom)
	vaultB := newKeeper(keyB, bank, UnderlyingDenom, PairShareDenom)

	vaultA.RegisterCounterpart(vaultB)
	vaultB.RegisterCounterpart(vaultA)

	return vaultA, vaultB, ctx
}

func newKeeper(key *storetypes.KVStoreKey, bank types.BankKeeper, underlyingDenom, shareDenom string) *keeper.Keeper {
	return keeper.NewKeeper(
		underlyingDenom,
		shareDenom,
		runtime.NewKVStoreService(key),
		log.NewNopLogger(),
		runtime.ProvideHeaderInfoService(nil),
		runtime.ProvideEventService(),
		address.NewBech32Codec("cosmos"),
		bank,
	)
}

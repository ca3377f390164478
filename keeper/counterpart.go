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
	"context"

	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

var _ vault.Counterpart = &Keeper{}

// The Keeper implements vault.Counterpart so one vault instance can act as
// the destination leg of another vault's share swap.

func (k *Keeper) SharePrice(ctx context.Context) (math.Int, error) {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}

	return core.Price, nil
}

func (k *Keeper) AssetManager(ctx context.Context) (string, error) {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return "", err
	}

	return core.AssetManager, nil
}

func (k *Keeper) Accountant(ctx context.Context) (string, error) {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return "", err
	}

	return core.Accountant, nil
}

func (k *Keeper) Decimals(ctx context.Context) (uint32, error) {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return 0, err
	}

	return core.Decimals, nil
}

func (k *Keeper) IsPaused(ctx context.Context) (bool, error) {
	config, err := k.GetConfigState(ctx)
	if err != nil {
		return false, err
	}

	return config.Paused, nil
}

func (k *Keeper) WhitelistEnabled(ctx context.Context) (bool, error) {
	config, err := k.GetConfigState(ctx)
	if err != nil {
		return false, err
	}

	return config.WhitelistEnabled, nil
}

func (k *Keeper) IsWhitelisted(ctx context.Context, user string) (bool, error) {
	bz, err := k.address.StringToBytes(user)
	if err != nil {
		return false, sdkerrors.Wrapf(err, "unable to decode user address %s", user)
	}

	return k.IsAddressWhitelisted(ctx, bz)
}

func (k *Keeper) MinSharesToMint(ctx context.Context) (math.Int, error) {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return math.ZeroInt(), err
	}

	return core.MinSharesToMint, nil
}

func (k *Keeper) AllowsMint(ctx context.Context, mint string) (bool, error) {
	return k.MintAllowed(ctx, mint)
}

func (k *Keeper) ShareBalance(ctx context.Context, user string) (math.Int, error) {
	bz, err := k.address.StringToBytes(user)
	if err != nil {
		return math.ZeroInt(), sdkerrors.Wrapf(err, "unable to decode user address %s", user)
	}

	return k.bank.GetBalance(ctx, bz, k.shareDenom).Amount, nil
}

// MintSwapShares mints destination shares directly to the recipient and grows
// this vault's total share supply. Callers are expected to have verified the
// swap preconditions on both legs first.
func (k *Keeper) MintSwapShares(ctx context.Context, recipient string, amount math.Int) error {
	core, err := k.requireCoreState(ctx)
	if err != nil {
		return err
	}

	bz, err := k.address.StringToBytes(recipient)
	if err != nil {
		return sdkerrors.Wrapf(err, "unable to decode recipient address %s", recipient)
	}

	coins := sdk.NewCoins(sdk.NewCoin(k.shareDenom, amount))
	if err := k.bank.MintCoins(ctx, types.ModuleName, coins); err != nil {
		return sdkerrors.Wrap(err, "unable to mint swap shares")
	}
	if err := k.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, bz, coins); err != nil {
		return sdkerrors.Wrap(err, "unable to transfer swap shares")
	}

	core.TotalShares, err = core.TotalShares.SafeAdd(amount)
	if err != nil {
		return sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return k.SetCoreState(ctx, core)
}

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

	"cosmossdk.io/core/event"
	sdkerrors "cosmossdk.io/errors"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

// SwapShares burns source vault shares and mints destination vault shares in
// one transaction, converting through the shared underlying at both vaults'
// prices. The swap fee is split evenly and paid to both accountants in their
// respective share denominations.
func (m msgServer) SwapShares(ctx context.Context, msg *vault.MsgSwapShares) (*vault.MsgSwapSharesResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if config.Paused {
		return nil, vault.ErrVaultPaused
	}

	if msg.DestinationMint == m.shareDenom {
		return nil, vault.ErrInvalidSwapSameVault
	}
	counterpart, ok := m.counterparts[msg.DestinationMint]
	if !ok {
		return nil, sdkerrors.Wrapf(vault.ErrUnknownCounterpart, "no counterpart registered for %s", msg.DestinationMint)
	}

	feeBps := uint32(vault.DefaultSwapFeeBps)
	if msg.SwapFeeBps != nil {
		feeBps = *msg.SwapFeeBps
	}
	if feeBps > vault.MaxSwapFeeBps {
		return nil, sdkerrors.Wrapf(vault.ErrInvalidSwapFee, "swap fee %d exceeds maximum of %d bps", feeBps, vault.MaxSwapFeeBps)
	}

	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "swap amount must be positive")
	}

	caller, err := m.address.StringToBytes(msg.Caller)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode caller address %s", msg.Caller)
	}

	// Destination-side preconditions.
	if counterpart.UnderlyingDenom() != m.underlyingDenom {
		return nil, sdkerrors.Wrapf(vault.ErrUnderlyingMintMismatch, "expected %s, counterpart holds %s", m.underlyingDenom, counterpart.UnderlyingDenom())
	}
	// Roles may drift after the allowlist entry was made, so the asset
	// manager pairing is re-checked on every swap.
	destAssetManager, err := counterpart.AssetManager(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart asset manager")
	}
	if destAssetManager != core.AssetManager {
		return nil, sdkerrors.Wrapf(vault.ErrAssetManagerMismatch, "expected %s, counterpart has %s", core.AssetManager, destAssetManager)
	}
	destDecimals, err := counterpart.Decimals(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart decimals")
	}
	if destDecimals != core.Decimals {
		return nil, sdkerrors.Wrapf(vault.ErrTokenDecimalMismatch, "expected %d decimals, counterpart has %d", core.Decimals, destDecimals)
	}
	destPaused, err := counterpart.IsPaused(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart pause state")
	}
	if destPaused {
		return nil, vault.ErrVaultPaused
	}
	allowed, err := counterpart.AllowsMint(ctx, m.shareDenom)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check counterpart allowlist")
	}
	if !allowed {
		return nil, sdkerrors.Wrapf(vault.ErrNotInAllowlist, "counterpart does not allow %s", m.shareDenom)
	}

	if config.WhitelistEnabled {
		whitelisted, err := m.IsAddressWhitelisted(ctx, caller)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to check whitelist")
		}
		if !whitelisted {
			return nil, vault.ErrUserNotWhitelisted
		}
	}
	destWhitelistEnabled, err := counterpart.WhitelistEnabled(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart whitelist state")
	}
	if destWhitelistEnabled {
		whitelisted, err := counterpart.IsWhitelisted(ctx, msg.Caller)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to check counterpart whitelist")
		}
		if !whitelisted {
			return nil, vault.ErrUserNotWhitelisted
		}
	}

	balance := m.bank.GetBalance(ctx, caller, m.shareDenom).Amount
	if balance.LT(msg.Amount) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientShares, "balance %s below requested %s", balance, msg.Amount)
	}
	if core.MinSharesToMint.IsPositive() {
		remaining := balance.Sub(msg.Amount)
		if remaining.IsPositive() && remaining.LT(core.MinSharesToMint) {
			return nil, sdkerrors.Wrapf(vault.ErrMinimumSharesNotMet, "remaining balance %s below minimum %s", remaining, core.MinSharesToMint)
		}
	}

	destPrice, err := counterpart.SharePrice(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart share price")
	}

	// Value the source shares in underlying, take the fee there and split it
	// between the two accountants at their own prices.
	underlyingValue, err := convertToAssets(msg.Amount, core.Price)
	if err != nil {
		return nil, err
	}
	feeValue, err := applyBasisPoints(underlyingValue, feeBps)
	if err != nil {
		return nil, err
	}
	sourceFeeValue := feeValue.QuoRaw(2)
	destFeeValue := feeValue.Sub(sourceFeeValue)

	netValue, err := underlyingValue.SafeSub(feeValue)
	if err != nil || !netValue.IsPositive() {
		return nil, vault.ErrZeroAmountCalculated
	}

	destShares, err := convertToShares(netValue, destPrice)
	if err != nil {
		return nil, err
	}
	if !destShares.IsPositive() {
		return nil, vault.ErrZeroSharesCalculated
	}
	if !msg.MinDestinationAmount.IsNil() && msg.MinDestinationAmount.IsPositive() && destShares.LT(msg.MinDestinationAmount) {
		return nil, sdkerrors.Wrapf(vault.ErrSlippageNotMet, "received %s shares, minimum %s", destShares, msg.MinDestinationAmount)
	}

	destMinimum, err := counterpart.MinSharesToMint(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart minimum")
	}
	if destMinimum.IsPositive() {
		destBalance, err := counterpart.ShareBalance(ctx, msg.Caller)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to get counterpart balance")
		}
		if destBalance.Add(destShares).LT(destMinimum) {
			return nil, sdkerrors.Wrapf(vault.ErrMinimumSharesNotMet, "resulting balance %s below minimum %s", destBalance.Add(destShares), destMinimum)
		}
	}

	sourceFeeShares, err := convertToShares(sourceFeeValue, core.Price)
	if err != nil {
		return nil, err
	}
	destFeeShares, err := convertToShares(destFeeValue, destPrice)
	if err != nil {
		return nil, err
	}

	// Source leg: pull the caller's shares in and burn them.
	if err := m.bank.SendCoinsFromAccountToModule(ctx, caller, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer shares for swap")
	}
	if err := m.bank.BurnCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to burn swapped shares")
	}

	core.TotalShares, err = core.TotalShares.SafeSub(msg.Amount)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	if sourceFeeShares.IsPositive() {
		accountant, err := m.address.StringToBytes(core.Accountant)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode accountant address %s", core.Accountant)
		}
		coins := sdk.NewCoins(sdk.NewCoin(m.shareDenom, sourceFeeShares))
		if err := m.bank.MintCoins(ctx, types.ModuleName, coins); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to mint swap fee shares")
		}
		if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accountant, coins); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to transfer swap fee shares")
		}
		core.TotalShares, err = core.TotalShares.SafeAdd(sourceFeeShares)
		if err != nil {
			return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
		}
	}

	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	// Destination leg: mint through the counterpart.
	if err := counterpart.MintSwapShares(ctx, msg.Caller, destShares); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to mint destination shares")
	}
	if destFeeShares.IsPositive() {
		destAccountant, err := counterpart.Accountant(ctx)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to get counterpart accountant")
		}
		if err := counterpart.MintSwapShares(ctx, destAccountant, destFeeShares); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to mint destination fee shares")
		}
	}

	totalFeeShares, err := sourceFeeShares.SafeAdd(destFeeShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	return &vault.MsgSwapSharesResponse{
			DestinationShares: destShares,
			FeeShares:         totalFeeShares,
		}, m.emit(ctx, "shares_swapped",
			event.Attribute{Key: "caller", Value: msg.Caller},
			event.Attribute{Key: "destination_mint", Value: msg.DestinationMint},
			event.Attribute{Key: "amount", Value: msg.Amount.String()},
			event.Attribute{Key: "destination_shares", Value: destShares.String()},
			event.Attribute{Key: "fee_shares", Value: totalFeeShares.String()},
		)
}

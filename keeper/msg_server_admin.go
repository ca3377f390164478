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
	"time"

	"cosmossdk.io/core/event"
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

func (m msgServer) PauseVault(ctx context.Context, msg *vault.MsgPauseVault) (*vault.MsgPauseVaultResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if config.Paused {
		return nil, vault.ErrVaultPaused
	}

	config.Paused = true
	if err := m.SetConfigState(ctx, config); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set config state")
	}

	return &vault.MsgPauseVaultResponse{}, m.emit(ctx, "vault_paused")
}

func (m msgServer) UnpauseVault(ctx context.Context, msg *vault.MsgUnpauseVault) (*vault.MsgUnpauseVaultResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if !config.Paused {
		return nil, vault.ErrVaultNotPaused
	}

	config.Paused = false
	if err := m.SetConfigState(ctx, config); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set config state")
	}

	return &vault.MsgUnpauseVaultResponse{}, m.emit(ctx, "vault_unpaused")
}

// EmergencyWithdraw is two-phase. The first call with a given denom and
// amount arms a timelock; a repeat call with identical parameters after the
// timelock elapses executes the transfer. The vault must stay paused for the
// whole window.
func (m msgServer) EmergencyWithdraw(ctx context.Context, msg *vault.MsgEmergencyWithdraw) (*vault.MsgEmergencyWithdrawResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if !config.Paused {
		return nil, vault.ErrVaultNotPaused
	}

	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "amount must be positive")
	}
	recipient, err := m.address.StringToBytes(msg.Recipient)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode recipient address %s", msg.Recipient)
	}

	emergency, err := m.GetEmergencyState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get emergency state from state")
	}

	now := m.header.GetHeaderInfo(ctx).Time

	if emergency.PendingDenom == "" {
		emergency.PendingDenom = msg.Denom
		emergency.PendingAmount = msg.Amount
		emergency.TimelockEnd = now.Add(cooldownDuration(emergency.CooldownSecs))
		if err := m.SetEmergencyState(ctx, emergency); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to set emergency state")
		}

		return &vault.MsgEmergencyWithdrawResponse{
				Executed:     false,
				ExecutableAt: emergency.TimelockEnd,
			}, m.emit(ctx, "emergency_withdrawal_armed",
				event.Attribute{Key: "denom", Value: msg.Denom},
				event.Attribute{Key: "amount", Value: msg.Amount.String()},
				event.Attribute{Key: "executable_at", Value: emergency.TimelockEnd.String()},
			)
	}

	if msg.Denom != emergency.PendingDenom {
		return nil, sdkerrors.Wrapf(vault.ErrEmergencyTokenMismatch, "armed for %s, got %s", emergency.PendingDenom, msg.Denom)
	}
	if !msg.Amount.Equal(emergency.PendingAmount) {
		return nil, sdkerrors.Wrapf(vault.ErrEmergencyAmountMismatch, "armed for %s, got %s", emergency.PendingAmount, msg.Amount)
	}
	if now.Before(emergency.TimelockEnd) {
		return nil, sdkerrors.Wrapf(vault.ErrEmergencyTimelockActive, "executable at %s", emergency.TimelockEnd)
	}

	balance := m.bank.GetBalance(ctx, types.ModuleAddress, msg.Denom).Amount
	if msg.Amount.GT(balance) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientVaultFunds, "vault balance %s below requested %s", balance, msg.Amount)
	}

	if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipient, sdk.NewCoins(sdk.NewCoin(msg.Denom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer emergency funds")
	}

	if msg.Denom == m.underlyingDenom {
		// Idle accounting tracks the underlying, so keep it consistent with
		// whatever the emergency drained.
		if msg.Amount.GTE(core.TotalIdle) {
			core.TotalIdle = math.ZeroInt()
		} else {
			core.TotalIdle = core.TotalIdle.Sub(msg.Amount)
		}
		if err := m.SetCoreState(ctx, core); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to set core state")
		}
	}

	emergency.PendingDenom = ""
	emergency.PendingAmount = math.ZeroInt()
	emergency.TimelockEnd = time.Time{}
	if err := m.SetEmergencyState(ctx, emergency); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set emergency state")
	}

	return &vault.MsgEmergencyWithdrawResponse{
			Executed: true,
		}, m.emit(ctx, "emergency_withdrawal_executed",
			event.Attribute{Key: "denom", Value: msg.Denom},
			event.Attribute{Key: "amount", Value: msg.Amount.String()},
			event.Attribute{Key: "recipient", Value: msg.Recipient},
		)
}

// SweepUnexpectedDeposits transfers out funds the vault holds beyond its own
// accounting, such as tokens sent directly to the module address.
func (m msgServer) SweepUnexpectedDeposits(ctx context.Context, msg *vault.MsgSweepUnexpectedDeposits) (*vault.MsgSweepUnexpectedDepositsResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}

	recipient, err := m.address.StringToBytes(msg.Recipient)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode recipient address %s", msg.Recipient)
	}

	balance := m.bank.GetBalance(ctx, types.ModuleAddress, msg.Denom).Amount

	tracked := math.ZeroInt()
	switch msg.Denom {
	case m.underlyingDenom:
		tracked = core.TotalIdle
	case m.shareDenom:
		tracked = core.SharesInCustody
	}

	sweep, err := balance.SafeSub(tracked)
	if err != nil || !sweep.IsPositive() {
		return nil, vault.ErrNoUnexpectedDeposits
	}

	if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, recipient, sdk.NewCoins(sdk.NewCoin(msg.Denom, sweep))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer swept funds")
	}

	return &vault.MsgSweepUnexpectedDepositsResponse{
			AmountSwept: sweep,
		}, m.emit(ctx, "unexpected_deposits_swept",
			event.Attribute{Key: "denom", Value: msg.Denom},
			event.Attribute{Key: "amount", Value: sweep.String()},
			event.Attribute{Key: "recipient", Value: msg.Recipient},
		)
}

func (m msgServer) AddToWhitelist(ctx context.Context, msg *vault.MsgAddToWhitelist) (*vault.MsgAddToWhitelistResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}

	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if !config.WhitelistEnabled {
		return nil, vault.ErrWhitelistNotEnabled
	}

	user, err := m.address.StringToBytes(msg.User)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode user address %s", msg.User)
	}

	whitelisted, err := m.IsAddressWhitelisted(ctx, user)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check whitelist")
	}
	if whitelisted {
		return nil, vault.ErrUserAlreadyWhitelisted
	}

	if err := m.SetWhitelisted(ctx, user); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set whitelist entry")
	}

	return &vault.MsgAddToWhitelistResponse{}, m.emit(ctx, "whitelist_added",
		event.Attribute{Key: "user", Value: msg.User},
	)
}

func (m msgServer) RemoveFromWhitelist(ctx context.Context, msg *vault.MsgRemoveFromWhitelist) (*vault.MsgRemoveFromWhitelistResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}

	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	if !config.WhitelistEnabled {
		return nil, vault.ErrWhitelistNotEnabled
	}

	user, err := m.address.StringToBytes(msg.User)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode user address %s", msg.User)
	}

	whitelisted, err := m.IsAddressWhitelisted(ctx, user)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check whitelist")
	}
	if !whitelisted {
		return nil, vault.ErrUserNotWhitelisted
	}

	if err := m.RemoveWhitelisted(ctx, user); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to remove whitelist entry")
	}

	return &vault.MsgRemoveFromWhitelistResponse{}, m.emit(ctx, "whitelist_removed",
		event.Attribute{Key: "user", Value: msg.User},
	)
}

// AcceptAllowlistMint authorizes a counterpart vault's share denom as a swap
// source. Both vaults must share the same asset manager, tying the allowlist
// to a single operator's fleet.
func (m msgServer) AcceptAllowlistMint(ctx context.Context, msg *vault.MsgAcceptAllowlistMint) (*vault.MsgAcceptAllowlistMintResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}

	counterpart, ok := m.counterparts[msg.Mint]
	if !ok {
		return nil, sdkerrors.Wrapf(vault.ErrUnknownCounterpart, "no counterpart registered for %s", msg.Mint)
	}

	counterpartAssetManager, err := counterpart.AssetManager(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get counterpart asset manager")
	}
	if counterpartAssetManager != core.AssetManager {
		return nil, sdkerrors.Wrapf(vault.ErrAssetManagerMismatch, "expected %s, counterpart has %s", core.AssetManager, counterpartAssetManager)
	}

	if err := m.SetMintAllowed(ctx, msg.Mint); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set allowlist entry")
	}

	return &vault.MsgAcceptAllowlistMintResponse{}, m.emit(ctx, "allowlist_mint_accepted",
		event.Attribute{Key: "mint", Value: msg.Mint},
	)
}

func (m msgServer) CancelAllowlistMint(ctx context.Context, msg *vault.MsgCancelAllowlistMint) (*vault.MsgCancelAllowlistMintResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}

	allowed, err := m.MintAllowed(ctx, msg.Mint)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check allowlist")
	}
	if !allowed {
		return nil, vault.ErrNotInAllowlist
	}

	if err := m.RemoveMintAllowed(ctx, msg.Mint); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to remove allowlist entry")
	}

	return &vault.MsgCancelAllowlistMintResponse{}, m.emit(ctx, "allowlist_mint_cancelled",
		event.Attribute{Key: "mint", Value: msg.Mint},
	)
}

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

package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/core/header"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtrbch/stoken-demo/keeper"
	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
	"github.com/dmtrbch/stoken-demo/utils"
	"github.com/dmtrbch/stoken-demo/utils/mocks"
)

func TestPauseLifecycle(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ACT: A non-manager pauses.
	_, err := server.PauseVault(ctx, &vault.MsgPauseVault{Manager: utils.TestAccount().Address})

	// ASSERT: Only the manager may pause.
	require.ErrorIs(t, err, vault.ErrUnauthorized)

	// ACT: The manager pauses.
	_, err = server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)

	config, err := k.GetConfigState(ctx)
	require.NoError(t, err)
	assert.True(t, config.Paused)

	// ACT: Pause again.
	_, err = server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})

	// ASSERT: Already paused.
	require.ErrorIs(t, err, vault.ErrVaultPaused)

	// ACT: Unpause, then unpause again.
	_, err = server.UnpauseVault(ctx, &vault.MsgUnpauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)
	_, err = server.UnpauseVault(ctx, &vault.MsgUnpauseVault{Manager: roles.manager.Address})

	// ASSERT: Not paused anymore.
	require.ErrorIs(t, err, vault.ErrVaultNotPaused)
}

func TestEmergencyWithdrawTwoPhase(t *testing.T) {
	k, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Seed the vault with 1 idle token.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	recipient := utils.TestAccount()
	withdraw := &vault.MsgEmergencyWithdraw{
		Manager:   roles.manager.Address,
		Denom:     mocks.UnderlyingDenom,
		Amount:    math.NewInt(400_000),
		Recipient: recipient.Address,
	}

	// ACT: Attempt while unpaused.
	_, err = server.EmergencyWithdraw(ctx, withdraw)

	// ASSERT: Emergencies require a paused vault.
	require.ErrorIs(t, err, vault.ErrVaultNotPaused)

	// ARRANGE: Pause, then arm the withdrawal.
	_, err = server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)

	resp, err := server.EmergencyWithdraw(ctx, withdraw)
	require.NoError(t, err)
	assert.False(t, resp.Executed)
	assert.Equal(t, genesis.Add(24*time.Hour), resp.ExecutableAt)

	// ACT: Repeat with a different denom.
	_, err = server.EmergencyWithdraw(ctx, &vault.MsgEmergencyWithdraw{
		Manager:   roles.manager.Address,
		Denom:     mocks.ShareDenom,
		Amount:    math.NewInt(400_000),
		Recipient: recipient.Address,
	})

	// ASSERT: The execution must match the armed request exactly.
	require.ErrorIs(t, err, vault.ErrEmergencyTokenMismatch)

	// ACT: Repeat with a different amount.
	_, err = server.EmergencyWithdraw(ctx, &vault.MsgEmergencyWithdraw{
		Manager:   roles.manager.Address,
		Denom:     mocks.UnderlyingDenom,
		Amount:    math.NewInt(500_000),
		Recipient: recipient.Address,
	})
	require.ErrorIs(t, err, vault.ErrEmergencyAmountMismatch)

	// ACT: Repeat before the timelock lapses.
	_, err = server.EmergencyWithdraw(ctx, withdraw)
	require.ErrorIs(t, err, vault.ErrEmergencyTimelockActive)

	// ACT: Execute after the timelock.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24 * time.Hour)})
	resp, err = server.EmergencyWithdraw(ctx, withdraw)

	// ASSERT: Funds move and idle accounting follows.
	require.NoError(t, err)
	assert.True(t, resp.Executed)
	assert.Equal(t, math.NewInt(400_000), bank.Balances[recipient.Address].AmountOf(mocks.UnderlyingDenom))

	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(600_000), core.TotalIdle)

	// ASSERT: The emergency state is disarmed again.
	emergency, err := k.GetEmergencyState(ctx)
	require.NoError(t, err)
	assert.Empty(t, emergency.PendingDenom)
	assert.True(t, emergency.TimelockEnd.IsZero())
}

func TestSweepUnexpectedDeposits(t *testing.T) {
	_, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: A tracked deposit of 1 token.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	recipient := utils.TestAccount()

	// ACT: Sweep with nothing unexpected on hand.
	_, err = server.SweepUnexpectedDeposits(ctx, &vault.MsgSweepUnexpectedDeposits{
		Manager:   roles.manager.Address,
		Denom:     mocks.UnderlyingDenom,
		Recipient: recipient.Address,
	})

	// ASSERT: Tracked funds are not sweepable.
	require.ErrorIs(t, err, vault.ErrNoUnexpectedDeposits)

	// ARRANGE: Someone sends tokens straight to the module address.
	moduleAddress := types.ModuleAddress.String()
	bank.Balances[moduleAddress] = bank.Balances[moduleAddress].Add(sdk.NewCoin(mocks.UnderlyingDenom, math.NewInt(250_000)))

	// ACT: Sweep again.
	resp, err := server.SweepUnexpectedDeposits(ctx, &vault.MsgSweepUnexpectedDeposits{
		Manager:   roles.manager.Address,
		Denom:     mocks.UnderlyingDenom,
		Recipient: recipient.Address,
	})

	// ASSERT: Only the untracked excess moves.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(250_000), resp.AmountSwept)
	assert.Equal(t, math.NewInt(250_000), bank.Balances[recipient.Address].AmountOf(mocks.UnderlyingDenom))
	assert.Equal(t, math.NewInt(ONE), bank.Balances[moduleAddress].AmountOf(mocks.UnderlyingDenom))
}

func TestWhitelistAdministrationRequiresEnabledFeature(t *testing.T) {
	_, server, _, ctx, roles := setupVault(t)

	bob := utils.TestAccount()

	// ACT: Manage entries while the whitelist feature is disabled.
	_, err := server.AddToWhitelist(ctx, &vault.MsgAddToWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})

	// ASSERT: Entries cannot be added to a disabled whitelist.
	require.ErrorIs(t, err, vault.ErrWhitelistNotEnabled)

	// ACT: Remove from the disabled whitelist.
	_, err = server.RemoveFromWhitelist(ctx, &vault.MsgRemoveFromWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})

	// ASSERT: Removal is gated the same way.
	require.ErrorIs(t, err, vault.ErrWhitelistNotEnabled)
}

func TestWhitelistAdministration(t *testing.T) {
	// ARRANGE: A vault with the whitelist enabled from the start.
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	roles := newTestRoles()
	msg := initMsg(roles)
	enabled := true
	msg.WhitelistEnabled = &enabled
	_, err := server.InitVault(ctx, msg)
	require.NoError(t, err)

	bob := utils.TestAccount()

	// ACT: Add Bob twice.
	_, err = server.AddToWhitelist(ctx, &vault.MsgAddToWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})
	require.NoError(t, err)
	_, err = server.AddToWhitelist(ctx, &vault.MsgAddToWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})

	// ASSERT: Duplicate entries are rejected.
	require.ErrorIs(t, err, vault.ErrUserAlreadyWhitelisted)

	// ACT: Remove Bob, then remove him again.
	_, err = server.RemoveFromWhitelist(ctx, &vault.MsgRemoveFromWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})
	require.NoError(t, err)
	_, err = server.RemoveFromWhitelist(ctx, &vault.MsgRemoveFromWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})

	// ASSERT: Absent entries cannot be removed.
	require.ErrorIs(t, err, vault.ErrUserNotWhitelisted)
}

func TestAllowlistRequiresKnownCounterpart(t *testing.T) {
	_, server, _, ctx, roles := setupVault(t)

	// ACT: Allow a mint no counterpart is registered for.
	_, err := server.AcceptAllowlistMint(ctx, &vault.MsgAcceptAllowlistMint{
		Manager: roles.manager.Address,
		Mint:    mocks.PairShareDenom,
	})

	// ASSERT: Unknown mints are rejected.
	require.ErrorIs(t, err, vault.ErrUnknownCounterpart)

	// ACT: Cancel an entry that was never added.
	_, err = server.CancelAllowlistMint(ctx, &vault.MsgCancelAllowlistMint{
		Manager: roles.manager.Address,
		Mint:    mocks.PairShareDenom,
	})

	// ASSERT: Nothing to cancel.
	require.ErrorIs(t, err, vault.ErrNotInAllowlist)
}

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
	"github.com/dmtrbch/stoken-demo/types/vault"
	"github.com/dmtrbch/stoken-demo/utils"
	"github.com/dmtrbch/stoken-demo/utils/mocks"
)

const ONE = 1_000_000

var genesis = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type testRoles struct {
	authority    utils.Account
	oracle       utils.Account
	manager      utils.Account
	processor    utils.Account
	accountant   utils.Account
	assetManager utils.Account
}

func newTestRoles() testRoles {
	return testRoles{
		authority:    utils.TestAccount(),
		oracle:       utils.TestAccount(),
		manager:      utils.TestAccount(),
		processor:    utils.TestAccount(),
		accountant:   utils.TestAccount(),
		assetManager: utils.TestAccount(),
	}
}

func initMsg(roles testRoles) *vault.MsgInitVault {
	return &vault.MsgInitVault{
		Authority:    roles.authority.Address,
		Oracle:       roles.oracle.Address,
		Manager:      roles.manager.Address,
		Processor:    roles.processor.Address,
		Accountant:   roles.accountant.Address,
		AssetManager: roles.assetManager.Address,

		DepositFeeBps:           50,
		WithdrawFeeBps:          50,
		ManagementFeeBpsPerYear: 100,
		Decimals:                6,
	}
}

// setupVault creates an initialized vault with 50 bps deposit and withdraw
// fees and a share price of exactly one underlying unit.
func setupVault(t *testing.T) (*keeper.Keeper, vault.MsgServer, *mocks.BankKeeper, sdk.Context, testRoles) {
	bank := mocks.BankKeeper{
		Balances: make(map[string]sdk.Coins),
	}

	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	roles := newTestRoles()
	_, err := server.InitVault(ctx, initMsg(roles))
	require.NoError(t, err)

	return k, server, &bank, ctx, roles
}

func fund(bank *mocks.BankKeeper, account utils.Account, denom string, amount int64) {
	bank.Balances[account.Address] = bank.Balances[account.Address].Add(sdk.NewCoin(denom, math.NewInt(amount)))
}

func TestInitVaultTwiceFails(t *testing.T) {
	_, server, _, ctx, roles := setupVault(t)

	// ACT: Attempt a second initialization.
	_, err := server.InitVault(ctx, initMsg(roles))

	// ASSERT: The vault rejects reinitialization.
	require.ErrorIs(t, err, vault.ErrVaultInitialized)
}

func TestInitVaultRejectsExcessiveFees(t *testing.T) {
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	// ACT: Attempt initialization with a deposit fee above the cap.
	msg := initMsg(newTestRoles())
	msg.DepositFeeBps = 1_500
	_, err := server.InitVault(ctx, msg)

	// ASSERT: The fee cap is enforced.
	require.ErrorIs(t, err, vault.ErrInvalidFee)
}

func TestDepositBasic(t *testing.T) {
	k, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Fund Bob with 1 underlying token.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)

	// ACT: Bob deposits the full amount.
	resp, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: 50 bps fee leaves 995_000 shares for Bob.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(995_000), resp.SharesMinted)
	assert.Equal(t, math.NewInt(5_000), resp.FeeShares)
	assert.Equal(t, math.NewInt(995_000), bank.Balances[bob.Address].AmountOf(mocks.ShareDenom))
	assert.Equal(t, math.NewInt(5_000), bank.Balances[roles.accountant.Address].AmountOf(mocks.ShareDenom))
	assert.True(t, bank.Balances[bob.Address].AmountOf(mocks.UnderlyingDenom).IsZero())

	// ASSERT: Vault accounting reflects the deposit.
	core, found, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, math.NewInt(ONE), core.TotalIdle)
	assert.Equal(t, math.NewInt(ONE), core.TotalShares)
}

func TestDepositInvalidAmount(t *testing.T) {
	_, server, _, ctx, _ := setupVault(t)

	// ACT: Attempt a zero deposit.
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: utils.TestAccount().Address,
		Amount:    math.ZeroInt(),
	})

	// ASSERT: Error returned.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deposit amount must be positive")
}

func TestDepositSlippage(t *testing.T) {
	_, server, bank, ctx, _ := setupVault(t)

	// ARRANGE: Fund Bob.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)

	// ACT: Demand more shares than the fee allows.
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
		MinShares: math.NewInt(ONE),
	})

	// ASSERT: The slippage floor rejects the deposit.
	require.ErrorIs(t, err, vault.ErrSlippageNotMet)
}

func TestDepositWhilePaused(t *testing.T) {
	_, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Pause the vault.
	_, err := server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)

	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)

	// ACT: Attempt a deposit.
	_, err = server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: Paused vaults accept no deposits.
	require.ErrorIs(t, err, vault.ErrVaultPaused)
}

func TestDepositMaxTotalShares(t *testing.T) {
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	// ARRANGE: Initialize with a tight share cap.
	roles := newTestRoles()
	msg := initMsg(roles)
	maxShares := math.NewInt(500_000)
	msg.MaxTotalShares = &maxShares
	_, err := server.InitVault(ctx, msg)
	require.NoError(t, err)

	bob := utils.TestAccount()
	fund(&bank, bob, mocks.UnderlyingDenom, ONE)

	// ACT: Deposit past the cap.
	_, err = server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: The cap is enforced.
	require.ErrorIs(t, err, vault.ErrMaxTotalSharesExceeded)
}

func TestDepositWhitelistEnforced(t *testing.T) {
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	// ARRANGE: Initialize with the whitelist enabled.
	roles := newTestRoles()
	msg := initMsg(roles)
	enabled := true
	msg.WhitelistEnabled = &enabled
	_, err := server.InitVault(ctx, msg)
	require.NoError(t, err)

	bob := utils.TestAccount()
	fund(&bank, bob, mocks.UnderlyingDenom, 2*ONE)

	// ACT: Deposit before being whitelisted.
	_, err = server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: Non-whitelisted users are rejected.
	require.ErrorIs(t, err, vault.ErrUserNotWhitelisted)

	// ARRANGE: Whitelist Bob.
	_, err = server.AddToWhitelist(ctx, &vault.MsgAddToWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})
	require.NoError(t, err)

	// ACT: Deposit again.
	resp, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: The deposit now succeeds.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(995_000), resp.SharesMinted)
}

func TestAccrueManagementFee(t *testing.T) {
	k, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Seed supply with a deposit of 1 token.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	// ACT: Accrue exactly one year later at 100 bps per year.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(365 * 24 * time.Hour)})
	resp, err := server.AccrueManagementFee(ctx, &vault.MsgAccrueManagementFee{
		Signer: roles.accountant.Address,
	})

	// ASSERT: supply * r / (bps*year + r) = 1_000_000 * 100 / 10_100.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(9_900), resp.FeeShares)
	assert.Equal(t, math.NewInt(14_900), bank.Balances[roles.accountant.Address].AmountOf(mocks.ShareDenom))

	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(1_009_900), core.TotalShares)

	// ACT: Accrue again immediately.
	resp, err = server.AccrueManagementFee(ctx, &vault.MsgAccrueManagementFee{
		Signer: roles.accountant.Address,
	})

	// ASSERT: No time elapsed, no fee.
	require.NoError(t, err)
	assert.True(t, resp.FeeShares.IsZero())
}

func TestAccrueManagementFeePermissionless(t *testing.T) {
	_, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Seed supply with a deposit of 1 token.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	// ACT: A random account triggers the accrual a year later.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(365 * 24 * time.Hour)})
	resp, err := server.AccrueManagementFee(ctx, &vault.MsgAccrueManagementFee{
		Signer: utils.TestAccount().Address,
	})

	// ASSERT: Accrual is permissionless and still pays the accountant.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(9_900), resp.FeeShares)
	assert.Equal(t, math.NewInt(14_900), bank.Balances[roles.accountant.Address].AmountOf(mocks.ShareDenom))
}

func TestDepositInsufficientFunds(t *testing.T) {
	_, server, bank, ctx, _ := setupVault(t)

	// ARRANGE: Bob holds less than he tries to deposit.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE/2)

	// ACT: Deposit more than the balance.
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: The balance is checked before any transfer.
	require.ErrorIs(t, err, vault.ErrInsufficientBalance)
}

func TestProcessDepositsAndReturnFunds(t *testing.T) {
	k, server, bank, ctx, roles := setupVault(t)

	// ARRANGE: Deposit 1 token of idle funds.
	bob := utils.TestAccount()
	fund(bank, bob, mocks.UnderlyingDenom, ONE)
	_, err := server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	// ACT: The processor moves half to the asset manager.
	_, err = server.ProcessDeposits(ctx, &vault.MsgProcessDeposits{
		Processor: roles.processor.Address,
		Amount:    math.NewInt(ONE / 2),
	})

	// ASSERT: Idle funds and balances move.
	require.NoError(t, err)
	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(ONE/2), core.TotalIdle)
	assert.Equal(t, math.NewInt(ONE/2), bank.Balances[roles.assetManager.Address].AmountOf(mocks.UnderlyingDenom))

	// ACT: Attempt to move more than remains idle.
	_, err = server.ProcessDeposits(ctx, &vault.MsgProcessDeposits{
		Processor: roles.processor.Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: The idle bound holds.
	require.ErrorIs(t, err, vault.ErrInsufficientVaultFunds)

	// ACT: The asset manager returns the funds.
	_, err = server.ReturnFunds(ctx, &vault.MsgReturnFunds{
		AssetManager: roles.assetManager.Address,
		Amount:       math.NewInt(ONE / 2),
	})

	// ASSERT: Idle funds are restored.
	require.NoError(t, err)
	core, _, err = k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(ONE), core.TotalIdle)
}

func TestProcessDepositsUnauthorized(t *testing.T) {
	_, server, _, ctx, _ := setupVault(t)

	// ACT: A random account plays processor.
	_, err := server.ProcessDeposits(ctx, &vault.MsgProcessDeposits{
		Processor: utils.TestAccount().Address,
		Amount:    math.NewInt(ONE),
	})

	// ASSERT: Only the processor may move idle funds.
	require.ErrorIs(t, err, vault.ErrUnauthorized)
}

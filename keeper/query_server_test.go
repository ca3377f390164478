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

func TestQueryVaultState(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)
	query := keeper.NewQueryServer(k)

	// ACT: Query with a nil request.
	_, err := query.VaultState(ctx, nil)
	require.Error(t, err)

	// ACT: Query the state.
	resp, err := query.VaultState(ctx, &vault.QueryVaultState{})

	// ASSERT: Initialization values are visible.
	require.NoError(t, err)
	assert.Equal(t, roles.manager.Address, resp.Core.Manager)
	assert.Equal(t, math.NewInt(vault.PricePrecision), resp.Core.Price)
	assert.Equal(t, uint32(50), resp.Core.DepositFeeBps)
	assert.False(t, resp.Config.Paused)
	assert.Equal(t, int64(vault.DefaultEmergencyCooldownSecs), resp.Emergency.CooldownSecs)

	// ACT: Pause and query again.
	_, err = server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)
	resp, err = query.VaultState(ctx, &vault.QueryVaultState{})
	require.NoError(t, err)
	assert.True(t, resp.Config.Paused)
}

func TestQueryPreviewDeposit(t *testing.T) {
	k, _, _, ctx, _ := setupVault(t)
	query := keeper.NewQueryServer(k)

	// ACT: Preview a 1 token deposit at 50 bps.
	resp, err := query.PreviewDeposit(ctx, &vault.QueryPreviewDeposit{Amount: math.NewInt(ONE)})

	// ASSERT: The exact fee splits off.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(995_000), resp.Shares)
	assert.Equal(t, math.NewInt(5_000), resp.FeeShares)

	// ACT: Preview 300 units, where the fee lands exactly on half a unit
	// with an odd quotient.
	resp, err = query.PreviewDeposit(ctx, &vault.QueryPreviewDeposit{Amount: math.NewInt(300)})

	// ASSERT: Half-to-even rounds the fee of 1.5 up to 2.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(298), resp.Shares)
	assert.Equal(t, math.NewInt(2), resp.FeeShares)

	// ACT: Preview 100 units, where the fee of 0.5 rounds to an even zero.
	resp, err = query.PreviewDeposit(ctx, &vault.QueryPreviewDeposit{Amount: math.NewInt(100)})

	// ASSERT: The one-unit fee floor still applies.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(99), resp.Shares)
	assert.Equal(t, math.NewInt(1), resp.FeeShares)

	// ACT: Preview a zero deposit.
	_, err = query.PreviewDeposit(ctx, &vault.QueryPreviewDeposit{Amount: math.ZeroInt()})
	require.ErrorIs(t, err, vault.ErrInvalidAmount)
}

func TestQueryPreviewWithdraw(t *testing.T) {
	k, _, _, ctx, _ := setupVault(t)
	query := keeper.NewQueryServer(k)

	// ACT: Preview withdrawing 995_000 shares at 50 bps.
	resp, err := query.PreviewWithdraw(ctx, &vault.QueryPreviewWithdraw{Shares: math.NewInt(995_000)})

	// ASSERT: 4_975 fee shares, 990_025 underlying due.
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(990_025), resp.Amount)
	assert.Equal(t, math.NewInt(4_975), resp.FeeShares)
}

func TestQueryMaxDeposit(t *testing.T) {
	// ARRANGE: A vault with a 2 token idle cap.
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	query := keeper.NewQueryServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	roles := newTestRoles()
	msg := initMsg(roles)
	idleCap := math.NewInt(2 * ONE)
	msg.MaxTotalIdle = &idleCap
	_, err := server.InitVault(ctx, msg)
	require.NoError(t, err)

	// ACT: Query the headroom before any deposit.
	resp, err := query.MaxDeposit(ctx, &vault.QueryMaxDeposit{})
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(2*ONE), resp.Amount)

	// ARRANGE: Deposit 1 token.
	bob := utils.TestAccount()
	fund(&bank, bob, mocks.UnderlyingDenom, ONE)
	_, err = server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)

	// ACT: Query the remaining headroom.
	resp, err = query.MaxDeposit(ctx, &vault.QueryMaxDeposit{})
	require.NoError(t, err)
	assert.Equal(t, math.NewInt(ONE), resp.Amount)

	// ACT: Pause and query again.
	_, err = server.PauseVault(ctx, &vault.MsgPauseVault{Manager: roles.manager.Address})
	require.NoError(t, err)
	resp, err = query.MaxDeposit(ctx, &vault.QueryMaxDeposit{})
	require.NoError(t, err)
	assert.True(t, resp.Amount.IsZero())
}

func TestQueryWhitelistedAndWithdrawal(t *testing.T) {
	// ARRANGE: A vault with the whitelist enabled so entries can be managed.
	bank := mocks.BankKeeper{Balances: make(map[string]sdk.Coins)}
	k, ctx := mocks.VaultKeeper(bank)
	server := keeper.NewMsgServer(k)
	query := keeper.NewQueryServer(k)
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis})

	roles := newTestRoles()
	initRequest := initMsg(roles)
	enabled := true
	initRequest.WhitelistEnabled = &enabled
	_, err := server.InitVault(ctx, initRequest)
	require.NoError(t, err)

	// ARRANGE: Whitelist Bob.
	bob := utils.TestAccount()
	_, err = server.AddToWhitelist(ctx, &vault.MsgAddToWhitelist{
		Manager: roles.manager.Address,
		User:    bob.Address,
	})
	require.NoError(t, err)

	// ACT: Query both Bob and a stranger.
	resp, err := query.Whitelisted(ctx, &vault.QueryWhitelisted{User: bob.Address})
	require.NoError(t, err)
	assert.True(t, resp.Whitelisted)

	resp, err = query.Whitelisted(ctx, &vault.QueryWhitelisted{User: utils.TestAccount().Address})
	require.NoError(t, err)
	assert.False(t, resp.Whitelisted)

	// ACT: Query a withdrawal that does not exist.
	_, err = query.WithdrawalRequest(ctx, &vault.QueryWithdrawalRequest{RequestId: 42})
	require.ErrorIs(t, err, vault.ErrWithdrawalRequestNotFound)

	// ARRANGE: Create one.
	fund(&bank, bob, mocks.UnderlyingDenom, ONE)
	_, err = server.Deposit(ctx, &vault.MsgDeposit{
		Depositor: bob.Address,
		Amount:    math.NewInt(ONE),
	})
	require.NoError(t, err)
	requestResp, err := server.RequestWithdrawal(ctx, &vault.MsgRequestWithdrawal{
		Requester: bob.Address,
		Shares:    math.NewInt(100_000),
	})
	require.NoError(t, err)

	// ACT: Query it back.
	withdrawalResp, err := query.WithdrawalRequest(ctx, &vault.QueryWithdrawalRequest{RequestId: requestResp.RequestId})
	require.NoError(t, err)
	assert.Equal(t, bob.Address, withdrawalResp.Request.User)
	assert.Equal(t, math.NewInt(99_500), withdrawalResp.Request.Shares)
}

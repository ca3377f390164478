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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmtrbch/stoken-demo/types/vault"
	"github.com/dmtrbch/stoken-demo/utils"
)

func TestProposeFeesValidation(t *testing.T) {
	_, server, _, ctx, roles := setupVault(t)

	// ACT: Propose nothing.
	_, err := server.ProposeFees(ctx, &vault.MsgProposeFees{Manager: roles.manager.Address})

	// ASSERT: An empty proposal is rejected.
	require.ErrorIs(t, err, vault.ErrNoFeeChanges)

	// ACT: Propose a fee above the cap.
	excessive := uint32(1_500)
	_, err = server.ProposeFees(ctx, &vault.MsgProposeFees{
		Manager:          roles.manager.Address,
		NewDepositFeeBps: &excessive,
	})

	// ASSERT: Fee caps apply at proposal time.
	require.ErrorIs(t, err, vault.ErrInvalidFee)

	// ACT: A non-manager proposes.
	fee := uint32(25)
	_, err = server.ProposeFees(ctx, &vault.MsgProposeFees{
		Manager:          utils.TestAccount().Address,
		NewDepositFeeBps: &fee,
	})

	// ASSERT: Only the manager may propose.
	require.ErrorIs(t, err, vault.ErrUnauthorized)
}

func TestAcceptFeesTimelockBoundary(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ARRANGE: Propose a deposit fee change.
	fee := uint32(25)
	_, err := server.ProposeFees(ctx, &vault.MsgProposeFees{
		Manager:          roles.manager.Address,
		NewDepositFeeBps: &fee,
	})
	require.NoError(t, err)

	// ACT: Propose again while the first change is pending.
	_, err = server.ProposeFees(ctx, &vault.MsgProposeFees{
		Manager:          roles.manager.Address,
		NewDepositFeeBps: &fee,
	})

	// ASSERT: One pending change at a time.
	require.ErrorIs(t, err, vault.ErrFeeChangeTimelockActive)

	// ACT: Accept one second before the 24 hour timelock lapses.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24*time.Hour - time.Second)})
	_, err = server.AcceptFees(ctx, &vault.MsgAcceptFees{Manager: roles.manager.Address})

	// ASSERT: The timelock still holds.
	require.ErrorIs(t, err, vault.ErrFeeChangeTimelockActive)

	// ACT: Accept exactly at the boundary.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24 * time.Hour)})
	_, err = server.AcceptFees(ctx, &vault.MsgAcceptFees{Manager: roles.manager.Address})

	// ASSERT: The boundary instant counts as expired and the fee applies.
	require.NoError(t, err)
	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(25), core.DepositFeeBps)
	assert.Equal(t, uint32(50), core.WithdrawFeeBps)

	// ACT: Accept again with nothing pending.
	_, err = server.AcceptFees(ctx, &vault.MsgAcceptFees{Manager: roles.manager.Address})

	// ASSERT: The pending change was consumed.
	require.ErrorIs(t, err, vault.ErrNoPendingFeesChange)
}

func TestRoleChangeLifecycle(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ACT: Propose nothing.
	_, err := server.ProposeRoles(ctx, &vault.MsgProposeRoles{Manager: roles.manager.Address})

	// ASSERT: An empty proposal is rejected.
	require.ErrorIs(t, err, vault.ErrNoRoleChanges)

	// ARRANGE: Propose a new oracle.
	newOracle := utils.TestAccount()
	_, err = server.ProposeRoles(ctx, &vault.MsgProposeRoles{
		Manager:   roles.manager.Address,
		NewOracle: &newOracle.Address,
	})
	require.NoError(t, err)

	// ACT: Accept after the 48 hour role cooldown.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(48 * time.Hour)})
	_, err = server.AcceptRoles(ctx, &vault.MsgAcceptRoles{Manager: roles.manager.Address})

	// ASSERT: Only the oracle changed.
	require.NoError(t, err)
	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, newOracle.Address, core.Oracle)
	assert.Equal(t, roles.manager.Address, core.Manager)
	assert.Equal(t, roles.processor.Address, core.Processor)
}

func TestLimitsChangeLifecycle(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ARRANGE: Propose inconsistent limits.
	maxTotal := math.NewInt(1_000)
	maxPerUser := math.NewInt(2_000)
	_, err := server.ProposeLimits(ctx, &vault.MsgProposeLimits{
		Manager:             roles.manager.Address,
		NewMaxTotalShares:   &maxTotal,
		NewMaxSharesPerUser: &maxPerUser,
	})

	// ASSERT: The per-user limit may not exceed the total limit.
	require.ErrorIs(t, err, vault.ErrInvalidLimit)

	// ARRANGE: Propose a consistent cap.
	newCap := math.NewInt(10 * ONE)
	_, err = server.ProposeLimits(ctx, &vault.MsgProposeLimits{
		Manager:           roles.manager.Address,
		NewMaxTotalShares: &newCap,
	})
	require.NoError(t, err)

	// ACT: Accept after the config cooldown.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24 * time.Hour)})
	_, err = server.AcceptLimits(ctx, &vault.MsgAcceptLimits{Manager: roles.manager.Address})

	// ASSERT: The cap applies.
	require.NoError(t, err)
	core, _, err := k.GetCoreState(ctx)
	require.NoError(t, err)
	assert.Equal(t, newCap, core.MaxTotalShares)
}

func TestWhitelistToggleLifecycle(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ACT: Propose the value already in force.
	_, err := server.ProposeWhitelist(ctx, &vault.MsgProposeWhitelist{
		Manager: roles.manager.Address,
		Enabled: false,
	})

	// ASSERT: No-op toggles are rejected.
	require.ErrorIs(t, err, vault.ErrNoWhitelistChanges)

	// ARRANGE: Propose enabling the whitelist.
	_, err = server.ProposeWhitelist(ctx, &vault.MsgProposeWhitelist{
		Manager: roles.manager.Address,
		Enabled: true,
	})
	require.NoError(t, err)

	// ACT: Accept after the config cooldown.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24 * time.Hour)})
	_, err = server.AcceptWhitelist(ctx, &vault.MsgAcceptWhitelist{Manager: roles.manager.Address})

	// ASSERT: The whitelist is now enforced.
	require.NoError(t, err)
	config, err := k.GetConfigState(ctx)
	require.NoError(t, err)
	assert.True(t, config.WhitelistEnabled)
}

func TestProposeCooldownsBlockedByPendingChange(t *testing.T) {
	_, server, _, ctx, roles := setupVault(t)

	// ARRANGE: A fee change is already in flight.
	fee := uint32(25)
	_, err := server.ProposeFees(ctx, &vault.MsgProposeFees{
		Manager:          roles.manager.Address,
		NewDepositFeeBps: &fee,
	})
	require.NoError(t, err)

	// ACT: Propose a shorter fee change cooldown under the ticking timelock.
	shorter := int64(60)
	_, err = server.ProposeCooldowns(ctx, &vault.MsgProposeCooldowns{
		Manager:                  roles.manager.Address,
		NewFeeChangeCooldownSecs: &shorter,
	})

	// ASSERT: Cooldowns are frozen while other changes are pending.
	require.ErrorIs(t, err, vault.ErrCooldownUpdateBlocked)
}

func TestCooldownChangeLifecycle(t *testing.T) {
	k, server, _, ctx, roles := setupVault(t)

	// ACT: Propose the values already in force.
	current := int64(vault.DefaultPriceUpdateCooldownSecs)
	_, err := server.ProposeCooldowns(ctx, &vault.MsgProposeCooldowns{
		Manager:                    roles.manager.Address,
		NewPriceUpdateCooldownSecs: &current,
	})

	// ASSERT: A proposal must change something.
	require.ErrorIs(t, err, vault.ErrNoCooldownChanges)

	// ACT: Propose an out-of-range duration.
	invalid := int64(0)
	_, err = server.ProposeCooldowns(ctx, &vault.MsgProposeCooldowns{
		Manager:                    roles.manager.Address,
		NewPriceUpdateCooldownSecs: &invalid,
	})

	// ASSERT: Durations are bounded.
	require.ErrorIs(t, err, vault.ErrInvalidCooldownDuration)

	// ARRANGE: Propose new price and emergency cooldowns.
	priceCooldown := int64(600)
	emergencyCooldown := int64(48 * 3_600)
	_, err = server.ProposeCooldowns(ctx, &vault.MsgProposeCooldowns{
		Manager:                    roles.manager.Address,
		NewPriceUpdateCooldownSecs: &priceCooldown,
		NewEmergencyCooldownSecs:   &emergencyCooldown,
	})
	require.NoError(t, err)

	// ACT: Accept after the config cooldown.
	ctx = ctx.WithHeaderInfo(header.Info{Time: genesis.Add(24 * time.Hour)})
	_, err = server.AcceptCooldowns(ctx, &vault.MsgAcceptCooldowns{Manager: roles.manager.Address})

	// ASSERT: Both the config and emergency state pick up the new values.
	require.NoError(t, err)
	config, err := k.GetConfigState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(600), config.PriceUpdateCooldownSecs)

	emergency, err := k.GetEmergencyState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(48*3_600), emergency.CooldownSecs)
}

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

	"github.com/dmtrbch/stoken-demo/types/vault"
)

// requireManager loads the core state and verifies the signer holds the
// manager role, since every governance change flows through the manager.
func (m msgServer) requireManager(ctx context.Context, signer string) (vault.CoreState, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return vault.CoreState{}, err
	}
	if signer != core.Manager {
		return vault.CoreState{}, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected manager %s, got %s", core.Manager, signer)
	}

	return core, nil
}

func (m msgServer) ProposeRoles(ctx context.Context, msg *vault.MsgProposeRoles) (*vault.MsgProposeRolesResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}

	_, pending, err := m.GetPendingRoles(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending roles from state")
	}
	if pending {
		return nil, vault.ErrRoleChangeTimelockActive
	}

	if msg.NewManager == nil && msg.NewProcessor == nil && msg.NewAccountant == nil && msg.NewOracle == nil && msg.NewAssetManager == nil {
		return nil, vault.ErrNoRoleChanges
	}

	for _, role := range []*string{msg.NewManager, msg.NewProcessor, msg.NewAccountant, msg.NewOracle, msg.NewAssetManager} {
		if role == nil {
			continue
		}
		if _, err := m.address.StringToBytes(*role); err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode role address %s", *role)
		}
	}

	if err := m.SetPendingRoles(ctx, vault.PendingRoles{
		NewManager:      msg.NewManager,
		NewProcessor:    msg.NewProcessor,
		NewAccountant:   msg.NewAccountant,
		NewOracle:       msg.NewOracle,
		NewAssetManager: msg.NewAssetManager,
		ProposedAt:      m.header.GetHeaderInfo(ctx).Time,
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set pending roles")
	}

	return &vault.MsgProposeRolesResponse{}, m.emit(ctx, "roles_proposed")
}

func (m msgServer) AcceptRoles(ctx context.Context, msg *vault.MsgAcceptRoles) (*vault.MsgAcceptRolesResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	pending, found, err := m.GetPendingRoles(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending roles from state")
	}
	if !found {
		return nil, vault.ErrNoPendingRolesChange
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.RoleChangeCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrRoleChangeTimelockActive, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.RoleChangeCooldownSecs)))
	}

	if pending.NewManager != nil {
		core.Manager = *pending.NewManager
	}
	if pending.NewProcessor != nil {
		core.Processor = *pending.NewProcessor
	}
	if pending.NewAccountant != nil {
		core.Accountant = *pending.NewAccountant
	}
	if pending.NewOracle != nil {
		core.Oracle = *pending.NewOracle
	}
	if pending.NewAssetManager != nil {
		core.AssetManager = *pending.NewAssetManager
	}

	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.ClearPendingRoles(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending roles")
	}

	return &vault.MsgAcceptRolesResponse{}, m.emit(ctx, "roles_accepted",
		event.Attribute{Key: "manager", Value: core.Manager},
		event.Attribute{Key: "processor", Value: core.Processor},
		event.Attribute{Key: "accountant", Value: core.Accountant},
		event.Attribute{Key: "oracle", Value: core.Oracle},
		event.Attribute{Key: "asset_manager", Value: core.AssetManager},
	)
}

func (m msgServer) ProposeFees(ctx context.Context, msg *vault.MsgProposeFees) (*vault.MsgProposeFeesResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}

	_, pending, err := m.GetPendingFees(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending fees from state")
	}
	if pending {
		return nil, vault.ErrFeeChangeTimelockActive
	}

	if msg.NewDepositFeeBps == nil && msg.NewWithdrawFeeBps == nil && msg.NewManagementFeeBpsPerYear == nil {
		return nil, vault.ErrNoFeeChanges
	}

	depositFee := uint32OrDefault(msg.NewDepositFeeBps, core.DepositFeeBps)
	withdrawFee := uint32OrDefault(msg.NewWithdrawFeeBps, core.WithdrawFeeBps)
	managementFee := uint32OrDefault(msg.NewManagementFeeBpsPerYear, core.ManagementFeeBpsPerYear)
	if err := validateFees(depositFee, withdrawFee, managementFee); err != nil {
		return nil, err
	}

	if err := m.SetPendingFees(ctx, vault.PendingFees{
		NewDepositFeeBps:           msg.NewDepositFeeBps,
		NewWithdrawFeeBps:          msg.NewWithdrawFeeBps,
		NewManagementFeeBpsPerYear: msg.NewManagementFeeBpsPerYear,
		ProposedAt:                 m.header.GetHeaderInfo(ctx).Time,
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set pending fees")
	}

	return &vault.MsgProposeFeesResponse{}, m.emit(ctx, "fees_proposed")
}

func (m msgServer) AcceptFees(ctx context.Context, msg *vault.MsgAcceptFees) (*vault.MsgAcceptFeesResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	pending, found, err := m.GetPendingFees(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending fees from state")
	}
	if !found {
		return nil, vault.ErrNoPendingFeesChange
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.FeeChangeCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrFeeChangeTimelockActive, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.FeeChangeCooldownSecs)))
	}

	if pending.NewDepositFeeBps != nil {
		core.DepositFeeBps = *pending.NewDepositFeeBps
	}
	if pending.NewWithdrawFeeBps != nil {
		core.WithdrawFeeBps = *pending.NewWithdrawFeeBps
	}
	if pending.NewManagementFeeBpsPerYear != nil {
		core.ManagementFeeBpsPerYear = *pending.NewManagementFeeBpsPerYear
	}

	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.ClearPendingFees(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending fees")
	}

	return &vault.MsgAcceptFeesResponse{}, m.emit(ctx, "fees_accepted",
		event.Attribute{Key: "deposit_fee_bps", Value: uintString(core.DepositFeeBps)},
		event.Attribute{Key: "withdraw_fee_bps", Value: uintString(core.WithdrawFeeBps)},
		event.Attribute{Key: "management_fee_bps_per_year", Value: uintString(core.ManagementFeeBpsPerYear)},
	)
}

func (m msgServer) ProposeLimits(ctx context.Context, msg *vault.MsgProposeLimits) (*vault.MsgProposeLimitsResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}

	_, pending, err := m.GetPendingLimits(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending limits from state")
	}
	if pending {
		return nil, vault.ErrLimitsChangeTimelockActive
	}

	if msg.NewMaxTotalShares == nil && msg.NewMaxSharesPerUser == nil && msg.NewMaxTotalIdle == nil && msg.NewMinSharesToMint == nil && msg.NewMaxDeviationBps == nil {
		return nil, vault.ErrNoLimitsChanges
	}

	maxTotalShares := core.MaxTotalShares
	if msg.NewMaxTotalShares != nil {
		maxTotalShares = *msg.NewMaxTotalShares
	}
	maxSharesPerUser := core.MaxSharesPerUser
	if msg.NewMaxSharesPerUser != nil {
		maxSharesPerUser = *msg.NewMaxSharesPerUser
	}
	maxTotalIdle := core.MaxTotalIdle
	if msg.NewMaxTotalIdle != nil {
		maxTotalIdle = *msg.NewMaxTotalIdle
	}
	minSharesToMint := core.MinSharesToMint
	if msg.NewMinSharesToMint != nil {
		minSharesToMint = *msg.NewMinSharesToMint
	}
	maxDeviationBps := uint32OrDefault(msg.NewMaxDeviationBps, core.MaxDeviationBps)

	if err := validateLimits(maxTotalShares, maxSharesPerUser, maxTotalIdle, minSharesToMint, maxDeviationBps); err != nil {
		return nil, err
	}

	if err := m.SetPendingLimits(ctx, vault.PendingLimits{
		NewMaxTotalShares:   msg.NewMaxTotalShares,
		NewMaxSharesPerUser: msg.NewMaxSharesPerUser,
		NewMaxTotalIdle:     msg.NewMaxTotalIdle,
		NewMinSharesToMint:  msg.NewMinSharesToMint,
		NewMaxDeviationBps:  msg.NewMaxDeviationBps,
		ProposedAt:          m.header.GetHeaderInfo(ctx).Time,
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set pending limits")
	}

	return &vault.MsgProposeLimitsResponse{}, m.emit(ctx, "limits_proposed")
}

func (m msgServer) AcceptLimits(ctx context.Context, msg *vault.MsgAcceptLimits) (*vault.MsgAcceptLimitsResponse, error) {
	core, err := m.requireManager(ctx, msg.Manager)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	pending, found, err := m.GetPendingLimits(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending limits from state")
	}
	if !found {
		return nil, vault.ErrNoPendingLimitsChange
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.ConfigCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrLimitsChangeTimelockActive, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.ConfigCooldownSecs)))
	}

	if pending.NewMaxTotalShares != nil {
		core.MaxTotalShares = *pending.NewMaxTotalShares
	}
	if pending.NewMaxSharesPerUser != nil {
		core.MaxSharesPerUser = *pending.NewMaxSharesPerUser
	}
	if pending.NewMaxTotalIdle != nil {
		core.MaxTotalIdle = *pending.NewMaxTotalIdle
	}
	if pending.NewMinSharesToMint != nil {
		core.MinSharesToMint = *pending.NewMinSharesToMint
	}
	if pending.NewMaxDeviationBps != nil {
		core.MaxDeviationBps = *pending.NewMaxDeviationBps
	}

	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.ClearPendingLimits(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending limits")
	}

	return &vault.MsgAcceptLimitsResponse{}, m.emit(ctx, "limits_accepted")
}

func (m msgServer) ProposeWhitelist(ctx context.Context, msg *vault.MsgProposeWhitelist) (*vault.MsgProposeWhitelistResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	_, pending, err := m.GetPendingWhitelist(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending whitelist from state")
	}
	if pending {
		return nil, vault.ErrWhitelistChangeTimelockActive
	}

	if msg.Enabled == config.WhitelistEnabled {
		return nil, vault.ErrNoWhitelistChanges
	}

	enabled := msg.Enabled
	if err := m.SetPendingWhitelist(ctx, vault.PendingWhitelist{
		NewEnabled: &enabled,
		ProposedAt: m.header.GetHeaderInfo(ctx).Time,
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set pending whitelist")
	}

	return &vault.MsgProposeWhitelistResponse{}, m.emit(ctx, "whitelist_proposed")
}

func (m msgServer) AcceptWhitelist(ctx context.Context, msg *vault.MsgAcceptWhitelist) (*vault.MsgAcceptWhitelistResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	pending, found, err := m.GetPendingWhitelist(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending whitelist from state")
	}
	if !found {
		return nil, vault.ErrNoPendingWhitelistChange
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.ConfigCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrWhitelistChangeTimelockActive, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.ConfigCooldownSecs)))
	}

	if pending.NewEnabled != nil {
		config.WhitelistEnabled = *pending.NewEnabled
	}

	if err := m.SetConfigState(ctx, config); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set config state")
	}
	if err := m.ClearPendingWhitelist(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending whitelist")
	}

	return &vault.MsgAcceptWhitelistResponse{}, m.emit(ctx, "whitelist_accepted")
}

func (m msgServer) ProposeCooldowns(ctx context.Context, msg *vault.MsgProposeCooldowns) (*vault.MsgProposeCooldownsResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}

	// Cooldown changes are frozen while other governance changes are in
	// flight, otherwise a short cooldown could be smuggled under an already
	// ticking timelock.
	blocked, err := m.HasPendingGovernanceChange(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check pending governance changes")
	}
	if blocked {
		return nil, vault.ErrCooldownUpdateBlocked
	}

	_, pending, err := m.GetPendingCooldowns(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending cooldowns from state")
	}
	if pending {
		return nil, vault.ErrCooldownChangeTimelockActive
	}

	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	emergency, err := m.GetEmergencyState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get emergency state from state")
	}

	changed := false
	for _, field := range []struct {
		proposed *int64
		current  int64
	}{
		{msg.NewPriceUpdateCooldownSecs, config.PriceUpdateCooldownSecs},
		{msg.NewPriceAcceptanceCooldownSecs, config.PriceAcceptanceCooldownSecs},
		{msg.NewConfigCooldownSecs, config.ConfigCooldownSecs},
		{msg.NewEmergencyCooldownSecs, emergency.CooldownSecs},
		{msg.NewRoleChangeCooldownSecs, config.RoleChangeCooldownSecs},
		{msg.NewFeeChangeCooldownSecs, config.FeeChangeCooldownSecs},
	} {
		if field.proposed == nil {
			continue
		}
		if err := validateCooldown(*field.proposed); err != nil {
			return nil, err
		}
		if *field.proposed != field.current {
			changed = true
		}
	}
	if !changed {
		return nil, vault.ErrNoCooldownChanges
	}

	if err := m.SetPendingCooldowns(ctx, vault.PendingCooldowns{
		NewPriceUpdateCooldownSecs:     msg.NewPriceUpdateCooldownSecs,
		NewPriceAcceptanceCooldownSecs: msg.NewPriceAcceptanceCooldownSecs,
		NewConfigCooldownSecs:          msg.NewConfigCooldownSecs,
		NewEmergencyCooldownSecs:       msg.NewEmergencyCooldownSecs,
		NewRoleChangeCooldownSecs:      msg.NewRoleChangeCooldownSecs,
		NewFeeChangeCooldownSecs:       msg.NewFeeChangeCooldownSecs,
		ProposedAt:                     m.header.GetHeaderInfo(ctx).Time,
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set pending cooldowns")
	}

	return &vault.MsgProposeCooldownsResponse{}, m.emit(ctx, "cooldowns_proposed")
}

func (m msgServer) AcceptCooldowns(ctx context.Context, msg *vault.MsgAcceptCooldowns) (*vault.MsgAcceptCooldownsResponse, error) {
	if _, err := m.requireManager(ctx, msg.Manager); err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	pending, found, err := m.GetPendingCooldowns(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending cooldowns from state")
	}
	if !found {
		return nil, vault.ErrNoPendingCooldownChange
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.ConfigCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrCooldownChangeTimelockActive, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.ConfigCooldownSecs)))
	}

	if pending.NewPriceUpdateCooldownSecs != nil {
		config.PriceUpdateCooldownSecs = *pending.NewPriceUpdateCooldownSecs
	}
	if pending.NewPriceAcceptanceCooldownSecs != nil {
		config.PriceAcceptanceCooldownSecs = *pending.NewPriceAcceptanceCooldownSecs
	}
	if pending.NewConfigCooldownSecs != nil {
		config.ConfigCooldownSecs = *pending.NewConfigCooldownSecs
	}
	if pending.NewRoleChangeCooldownSecs != nil {
		config.RoleChangeCooldownSecs = *pending.NewRoleChangeCooldownSecs
	}
	if pending.NewFeeChangeCooldownSecs != nil {
		config.FeeChangeCooldownSecs = *pending.NewFeeChangeCooldownSecs
	}
	if err := m.SetConfigState(ctx, config); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set config state")
	}

	if pending.NewEmergencyCooldownSecs != nil {
		emergency, err := m.GetEmergencyState(ctx)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to get emergency state from state")
		}
		emergency.CooldownSecs = *pending.NewEmergencyCooldownSecs
		if err := m.SetEmergencyState(ctx, emergency); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to set emergency state")
		}
	}

	if err := m.ClearPendingCooldowns(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending cooldowns")
	}

	return &vault.MsgAcceptCooldownsResponse{}, m.emit(ctx, "cooldowns_accepted")
}

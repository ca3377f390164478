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
	"strconv"
	"time"

	"cosmossdk.io/core/event"
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

var _ vault.MsgServer = &msgServer{}

type msgServer struct {
	*Keeper
}

func NewMsgServer(keeper *Keeper) vault.MsgServer {
	return &msgServer{Keeper: keeper}
}

// emit writes a typed key/value event through the event service.
func (m msgServer) emit(ctx context.Context, eventType string, attrs ...event.Attribute) error {
	return m.event.EventManager(ctx).EmitKV(ctx, eventType, attrs...)
}

// cooldownExpired reports whether the cooldown window starting at the given
// time has fully elapsed. The boundary instant itself counts as expired.
func cooldownExpired(now, start time.Time, cooldownSecs int64) bool {
	return !now.Before(start.Add(cooldownDuration(cooldownSecs)))
}

func cooldownDuration(secs int64) time.Duration {
	return time.Duration(secs) * time.Second
}

func uintString(value uint32) string {
	return strconv.FormatUint(uint64(value), 10)
}

func intOrZero(value *math.Int) math.Int {
	if value == nil {
		return math.ZeroInt()
	}
	return *value
}

func int64OrDefault(value *int64, fallback int64) int64 {
	if value == nil {
		return fallback
	}
	return *value
}

func uint32OrDefault(value *uint32, fallback uint32) uint32 {
	if value == nil {
		return fallback
	}
	return *value
}

func (m msgServer) InitVault(ctx context.Context, msg *vault.MsgInitVault) (*vault.MsgInitVaultResponse, error) {
	_, found, err := m.GetCoreState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get core state from state")
	}
	if found {
		return nil, vault.ErrVaultInitialized
	}

	for _, role := range []struct {
		name    string
		address string
	}{
		{"authority", msg.Authority},
		{"oracle", msg.Oracle},
		{"manager", msg.Manager},
		{"processor", msg.Processor},
		{"accountant", msg.Accountant},
		{"asset manager", msg.AssetManager},
	} {
		if _, err := m.address.StringToBytes(role.address); err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode %s address %s", role.name, role.address)
		}
	}

	if err := validateFees(msg.DepositFeeBps, msg.WithdrawFeeBps, msg.ManagementFeeBpsPerYear); err != nil {
		return nil, err
	}

	price := math.NewInt(vault.PricePrecision)
	if msg.InitialPrice != nil {
		price = *msg.InitialPrice
	}
	if !price.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidPrice, "initial price must be positive")
	}

	maxTotalShares := intOrZero(msg.MaxTotalShares)
	maxSharesPerUser := intOrZero(msg.MaxSharesPerUser)
	maxTotalIdle := intOrZero(msg.MaxTotalIdle)
	minSharesToMint := intOrZero(msg.MinSharesToMint)
	maxDeviationBps := uint32OrDefault(msg.MaxDeviationBps, vault.DefaultMaxDeviationBps)

	if err := validateLimits(maxTotalShares, maxSharesPerUser, maxTotalIdle, minSharesToMint, maxDeviationBps); err != nil {
		return nil, err
	}

	config := vault.ConfigState{
		PriceUpdateCooldownSecs:     int64OrDefault(msg.PriceUpdateCooldownSecs, vault.DefaultPriceUpdateCooldownSecs),
		PriceAcceptanceCooldownSecs: int64OrDefault(msg.PriceAcceptanceCooldownSecs, vault.DefaultPriceAcceptanceCooldownSecs),
		ConfigCooldownSecs:          int64OrDefault(msg.ConfigCooldownSecs, vault.DefaultConfigCooldownSecs),
		RoleChangeCooldownSecs:      int64OrDefault(msg.RoleChangeCooldownSecs, vault.DefaultRoleChangeCooldownSecs),
		FeeChangeCooldownSecs:       int64OrDefault(msg.FeeChangeCooldownSecs, vault.DefaultFeeChangeCooldownSecs),

		DownsideCapBps:    uint32OrDefault(msg.DownsideCapBps, vault.DefaultDownsideCapBps),
		WithdrawalTtlSecs: int64OrDefault(msg.WithdrawalTtlSecs, vault.DefaultWithdrawalTtlSecs),
		EarlyCancelFeeBps: uint32OrDefault(msg.EarlyCancelFeeBps, vault.DefaultEarlyCancelFeeBps),
		SystemPenaltyBps:  uint32OrDefault(msg.SystemPenaltyBps, vault.DefaultSystemPenaltyBps),

		WhitelistEnabled: msg.WhitelistEnabled != nil && *msg.WhitelistEnabled,
	}

	for _, cooldown := range []int64{
		config.PriceUpdateCooldownSecs,
		config.PriceAcceptanceCooldownSecs,
		config.ConfigCooldownSecs,
		config.RoleChangeCooldownSecs,
		config.FeeChangeCooldownSecs,
	} {
		if err := validateCooldown(cooldown); err != nil {
			return nil, err
		}
	}

	if config.WithdrawalTtlSecs < 1 || config.WithdrawalTtlSecs > vault.MaxWithdrawalTtlSecs {
		return nil, sdkerrors.Wrapf(vault.ErrInvalidArgument, "withdrawal ttl of %d seconds outside [1, %d]", config.WithdrawalTtlSecs, vault.MaxWithdrawalTtlSecs)
	}
	if config.DownsideCapBps > vault.BpsPrecision {
		return nil, sdkerrors.Wrapf(vault.ErrInvalidArgument, "downside cap %d exceeds %d bps", config.DownsideCapBps, vault.BpsPrecision)
	}
	if config.EarlyCancelFeeBps > vault.MaxFeeBps {
		return nil, sdkerrors.Wrapf(vault.ErrInvalidFee, "early cancel fee %d exceeds maximum of %d bps", config.EarlyCancelFeeBps, vault.MaxFeeBps)
	}
	if config.SystemPenaltyBps > vault.MaxFeeBps {
		return nil, sdkerrors.Wrapf(vault.ErrInvalidFee, "system penalty %d exceeds maximum of %d bps", config.SystemPenaltyBps, vault.MaxFeeBps)
	}

	emergencyCooldown := int64OrDefault(msg.EmergencyCooldownSecs, vault.DefaultEmergencyCooldownSecs)
	if err := validateCooldown(emergencyCooldown); err != nil {
		return nil, err
	}

	now := m.header.GetHeaderInfo(ctx).Time

	core := vault.CoreState{
		Authority:    msg.Authority,
		Oracle:       msg.Oracle,
		Manager:      msg.Manager,
		Processor:    msg.Processor,
		Accountant:   msg.Accountant,
		AssetManager: msg.AssetManager,

		DepositFeeBps:           msg.DepositFeeBps,
		WithdrawFeeBps:          msg.WithdrawFeeBps,
		ManagementFeeBpsPerYear: msg.ManagementFeeBpsPerYear,

		Price:                   price,
		TotalShares:             math.ZeroInt(),
		TotalIdle:               math.ZeroInt(),
		TotalWithdrawalsPending: math.ZeroInt(),
		SharesInCustody:         math.ZeroInt(),

		MaxTotalShares:   maxTotalShares,
		MaxSharesPerUser: maxSharesPerUser,
		MaxTotalIdle:     maxTotalIdle,
		MinSharesToMint:  minSharesToMint,
		MaxDeviationBps:  maxDeviationBps,

		Decimals: msg.Decimals,

		LastManagementFeeTime: now,
		LastPriceUpdateTime:   now,
		CreatedAt:             now,
	}

	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.SetConfigState(ctx, config); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set config state")
	}
	if err := m.SetEmergencyState(ctx, vault.EmergencyState{
		CooldownSecs:  emergencyCooldown,
		PendingAmount: math.ZeroInt(),
	}); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set emergency state")
	}

	return &vault.MsgInitVaultResponse{}, m.emit(ctx, "vault_initialized",
		event.Attribute{Key: "manager", Value: msg.Manager},
		event.Attribute{Key: "underlying_denom", Value: m.underlyingDenom},
		event.Attribute{Key: "share_denom", Value: m.shareDenom},
		event.Attribute{Key: "price", Value: price.String()},
	)
}

func (m msgServer) Deposit(ctx context.Context, msg *vault.MsgDeposit) (*vault.MsgDepositResponse, error) {
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

	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "deposit amount must be positive")
	}

	depositor, err := m.address.StringToBytes(msg.Depositor)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode depositor address %s", msg.Depositor)
	}

	beneficiaryAddr := msg.Beneficiary
	if beneficiaryAddr == "" {
		beneficiaryAddr = msg.Depositor
	}
	beneficiary, err := m.address.StringToBytes(beneficiaryAddr)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode beneficiary address %s", beneficiaryAddr)
	}

	if config.WhitelistEnabled {
		for _, addr := range [][]byte{depositor, beneficiary} {
			whitelisted, err := m.IsAddressWhitelisted(ctx, addr)
			if err != nil {
				return nil, sdkerrors.Wrap(err, "unable to check whitelist")
			}
			if !whitelisted {
				return nil, vault.ErrUserNotWhitelisted
			}
		}
	}

	funds := m.bank.GetBalance(ctx, depositor, m.underlyingDenom).Amount
	if funds.LT(msg.Amount) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientBalance, "balance %s below deposit %s", funds, msg.Amount)
	}

	netAmount, feeAmount, err := applyFee(msg.Amount, core.DepositFeeBps)
	if err != nil {
		return nil, err
	}

	shares, err := convertToShares(netAmount, core.Price)
	if err != nil {
		return nil, err
	}
	if !shares.IsPositive() {
		return nil, vault.ErrZeroSharesCalculated
	}

	feeShares, err := convertToShares(feeAmount, core.Price)
	if err != nil {
		return nil, err
	}

	if !msg.MinShares.IsNil() && msg.MinShares.IsPositive() && shares.LT(msg.MinShares) {
		return nil, sdkerrors.Wrapf(vault.ErrSlippageNotMet, "minted %s shares, minimum %s", shares, msg.MinShares)
	}

	beneficiaryShares := m.bank.GetBalance(ctx, beneficiary, m.shareDenom).Amount
	if core.MinSharesToMint.IsPositive() && beneficiaryShares.Add(shares).LT(core.MinSharesToMint) {
		return nil, sdkerrors.Wrapf(vault.ErrMinimumSharesNotMet, "resulting balance %s below minimum %s", beneficiaryShares.Add(shares), core.MinSharesToMint)
	}
	if core.MaxSharesPerUser.IsPositive() && beneficiaryShares.Add(shares).GT(core.MaxSharesPerUser) {
		return nil, vault.ErrMaxSharesPerUserExceeded
	}

	mintedShares, err := shares.SafeAdd(feeShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	newTotalShares, err := core.TotalShares.SafeAdd(mintedShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if core.MaxTotalShares.IsPositive() && newTotalShares.GT(core.MaxTotalShares) {
		return nil, vault.ErrMaxTotalSharesExceeded
	}

	newTotalIdle, err := core.TotalIdle.SafeAdd(msg.Amount)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if core.MaxTotalIdle.IsPositive() && newTotalIdle.GT(core.MaxTotalIdle) {
		return nil, vault.ErrMaxTotalIdleExceeded
	}

	if err := m.bank.SendCoinsFromAccountToModule(ctx, depositor, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.underlyingDenom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer underlying funds to vault")
	}

	if err := m.bank.MintCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, mintedShares))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to mint shares")
	}
	if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, beneficiary, sdk.NewCoins(sdk.NewCoin(m.shareDenom, shares))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer shares to beneficiary")
	}
	if feeShares.IsPositive() {
		accountant, err := m.address.StringToBytes(core.Accountant)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode accountant address %s", core.Accountant)
		}
		if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accountant, sdk.NewCoins(sdk.NewCoin(m.shareDenom, feeShares))); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to transfer fee shares to accountant")
		}
	}

	core.TotalShares = newTotalShares
	core.TotalIdle = newTotalIdle
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	return &vault.MsgDepositResponse{
			SharesMinted: shares,
			FeeShares:    feeShares,
		}, m.emit(ctx, "deposit",
			event.Attribute{Key: "depositor", Value: msg.Depositor},
			event.Attribute{Key: "beneficiary", Value: beneficiaryAddr},
			event.Attribute{Key: "amount", Value: msg.Amount.String()},
			event.Attribute{Key: "shares", Value: shares.String()},
			event.Attribute{Key: "fee_shares", Value: feeShares.String()},
		)
}

func (m msgServer) AccrueManagementFee(ctx context.Context, msg *vault.MsgAccrueManagementFee) (*vault.MsgAccrueManagementFeeResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}

	// Open to any signer: the fee always mints to the accountant, so there
	// is nothing to gain from calling it on someone else's behalf.
	now := m.header.GetHeaderInfo(ctx).Time
	elapsed := int64(now.Sub(core.LastManagementFeeTime) / time.Second)

	feeShares, err := managementFeeShares(core.TotalShares, core.ManagementFeeBpsPerYear, elapsed)
	if err != nil {
		return nil, err
	}

	if feeShares.IsPositive() {
		accountant, err := m.address.StringToBytes(core.Accountant)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode accountant address %s", core.Accountant)
		}

		coins := sdk.NewCoins(sdk.NewCoin(m.shareDenom, feeShares))
		if err := m.bank.MintCoins(ctx, types.ModuleName, coins); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to mint management fee shares")
		}
		if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accountant, coins); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to transfer management fee shares")
		}

		core.TotalShares, err = core.TotalShares.SafeAdd(feeShares)
		if err != nil {
			return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
		}
	}

	core.LastManagementFeeTime = now
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	return &vault.MsgAccrueManagementFeeResponse{
			FeeShares: feeShares,
		}, m.emit(ctx, "management_fee_accrued",
			event.Attribute{Key: "fee_shares", Value: feeShares.String()},
			event.Attribute{Key: "elapsed_seconds", Value: math.NewInt(elapsed).String()},
		)
}

func (m msgServer) ProcessDeposits(ctx context.Context, msg *vault.MsgProcessDeposits) (*vault.MsgProcessDepositsResponse, error) {
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

	if msg.Processor != core.Processor {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected processor %s, got %s", core.Processor, msg.Processor)
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "amount must be positive")
	}
	if msg.Amount.GT(core.TotalIdle) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientVaultFunds, "idle funds %s below requested %s", core.TotalIdle, msg.Amount)
	}

	moduleBalance := m.bank.GetBalance(ctx, types.ModuleAddress, m.underlyingDenom).Amount
	if msg.Amount.GT(moduleBalance) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientVaultFunds, "vault balance %s below requested %s", moduleBalance, msg.Amount)
	}

	assetManager, err := m.address.StringToBytes(core.AssetManager)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode asset manager address %s", core.AssetManager)
	}

	if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, assetManager, sdk.NewCoins(sdk.NewCoin(m.underlyingDenom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer funds to asset manager")
	}

	core.TotalIdle, err = core.TotalIdle.SafeSub(msg.Amount)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	return &vault.MsgProcessDepositsResponse{}, m.emit(ctx, "deposits_processed",
		event.Attribute{Key: "amount", Value: msg.Amount.String()},
		event.Attribute{Key: "asset_manager", Value: core.AssetManager},
	)
}

func (m msgServer) ReturnFunds(ctx context.Context, msg *vault.MsgReturnFunds) (*vault.MsgReturnFundsResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}

	if msg.AssetManager != core.AssetManager {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected asset manager %s, got %s", core.AssetManager, msg.AssetManager)
	}
	if msg.Amount.IsNil() || !msg.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "amount must be positive")
	}

	assetManager, err := m.address.StringToBytes(msg.AssetManager)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode asset manager address %s", msg.AssetManager)
	}

	if err := m.bank.SendCoinsFromAccountToModule(ctx, assetManager, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.underlyingDenom, msg.Amount))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer funds from asset manager")
	}

	core.TotalIdle, err = core.TotalIdle.SafeAdd(msg.Amount)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	return &vault.MsgReturnFundsResponse{}, m.emit(ctx, "funds_returned",
		event.Attribute{Key: "amount", Value: msg.Amount.String()},
	)
}

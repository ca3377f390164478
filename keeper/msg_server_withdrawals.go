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

	"cosmossdk.io/core/event"
	sdkerrors "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

func (m msgServer) RequestWithdrawal(ctx context.Context, msg *vault.MsgRequestWithdrawal) (*vault.MsgRequestWithdrawalResponse, error) {
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

	if msg.Shares.IsNil() || !msg.Shares.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "share amount must be positive")
	}

	requester, err := m.address.StringToBytes(msg.Requester)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode requester address %s", msg.Requester)
	}

	if config.WhitelistEnabled {
		whitelisted, err := m.IsAddressWhitelisted(ctx, requester)
		if err != nil {
			return nil, sdkerrors.Wrap(err, "unable to check whitelist")
		}
		if !whitelisted {
			return nil, vault.ErrUserNotWhitelisted
		}
	}

	balance := m.bank.GetBalance(ctx, requester, m.shareDenom).Amount
	if balance.LT(msg.Shares) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientShares, "balance %s below requested %s", balance, msg.Shares)
	}

	// Requests below the minimum, or ones that would strand a dust balance
	// under it, are rejected up front.
	if core.MinSharesToMint.IsPositive() {
		if msg.Shares.LT(core.MinSharesToMint) {
			return nil, sdkerrors.Wrapf(vault.ErrWithdrawalAmountTooLow, "requested %s shares below minimum %s", msg.Shares, core.MinSharesToMint)
		}
		remaining := balance.Sub(msg.Shares)
		if remaining.IsPositive() && remaining.LT(core.MinSharesToMint) {
			return nil, sdkerrors.Wrapf(vault.ErrMinimumSharesNotMet, "remaining balance %s below minimum %s", remaining, core.MinSharesToMint)
		}
	}

	netShares, feeShares, err := applyFee(msg.Shares, core.WithdrawFeeBps)
	if err != nil {
		return nil, err
	}
	if !netShares.IsPositive() {
		return nil, vault.ErrZeroSharesCalculated
	}

	amountDue, err := convertToAssets(netShares, core.Price)
	if err != nil {
		return nil, err
	}
	if !amountDue.IsPositive() {
		return nil, vault.ErrZeroAmountCalculated
	}

	minAmountOut := math.ZeroInt()
	if !msg.MinAmountOut.IsNil() && msg.MinAmountOut.IsPositive() {
		if msg.MinAmountOut.GT(amountDue) {
			return nil, sdkerrors.Wrapf(vault.ErrMinimumTooHigh, "minimum %s exceeds amount due %s", msg.MinAmountOut, amountDue)
		}
		// The minimum must tolerate at least the downside the vault itself
		// may absorb, or the request could never be fulfilled after an
		// in-cap price move.
		maxAllowedMin, err := applyBasisPoints(amountDue, vault.BpsPrecision-config.DownsideCapBps)
		if err != nil {
			return nil, err
		}
		if msg.MinAmountOut.GT(maxAllowedMin) {
			return nil, sdkerrors.Wrapf(vault.ErrMinimumTooHigh, "minimum %s exceeds downside-capped bound %s", msg.MinAmountOut, maxAllowedMin)
		}
		minAmountOut = msg.MinAmountOut
	}

	if err := m.bank.SendCoinsFromAccountToModule(ctx, requester, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, msg.Shares))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer shares to custody")
	}

	core.SharesInCustody, err = core.SharesInCustody.SafeAdd(msg.Shares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.TotalWithdrawalsPending, err = core.TotalWithdrawalsPending.SafeAdd(amountDue)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	id, err := m.NextWithdrawalID(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to allocate withdrawal id")
	}

	now := m.header.GetHeaderInfo(ctx).Time
	request := vault.WithdrawalRequest{
		User:           msg.Requester,
		Shares:         netShares,
		FeeShares:      feeShares,
		AmountDue:      amountDue,
		MinAmountOut:   minAmountOut,
		PriceAtRequest: core.Price,
		Status:         vault.WITHDRAWAL_STATUS_PENDING,
		CreatedAt:      now,
	}
	if err := m.SetWithdrawal(ctx, id, request); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set withdrawal request")
	}

	return &vault.MsgRequestWithdrawalResponse{
			RequestId: id,
			AmountDue: amountDue,
			FeeShares: feeShares,
		}, m.emit(ctx, "withdrawal_requested",
			event.Attribute{Key: "request_id", Value: strconv.FormatUint(id, 10)},
			event.Attribute{Key: "requester", Value: msg.Requester},
			event.Attribute{Key: "shares", Value: msg.Shares.String()},
			event.Attribute{Key: "amount_due", Value: amountDue.String()},
		)
}

func (m msgServer) UpdateWithdrawalMinimum(ctx context.Context, msg *vault.MsgUpdateWithdrawalMinimum) (*vault.MsgUpdateWithdrawalMinimumResponse, error) {
	if _, err := m.requireCoreState(ctx); err != nil {
		return nil, err
	}

	request, found, err := m.GetWithdrawal(ctx, msg.RequestId)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get withdrawal request from state")
	}
	if !found {
		return nil, vault.ErrWithdrawalRequestNotFound
	}
	if request.Status != vault.WITHDRAWAL_STATUS_PENDING {
		return nil, vault.ErrInvalidWithdrawalStatus
	}
	if msg.Requester != request.User {
		return nil, vault.ErrInvalidUserAccount
	}

	if msg.NewMinimum.IsNil() || msg.NewMinimum.IsNegative() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidWithdrawalMinimum, "minimum must be non-negative")
	}
	if msg.NewMinimum.GT(request.MinAmountOut) {
		return nil, sdkerrors.Wrapf(vault.ErrMinimumCannotIncrease, "new minimum %s above current %s", msg.NewMinimum, request.MinAmountOut)
	}

	request.MinAmountOut = msg.NewMinimum
	if err := m.SetWithdrawal(ctx, msg.RequestId, request); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set withdrawal request")
	}

	return &vault.MsgUpdateWithdrawalMinimumResponse{}, m.emit(ctx, "withdrawal_minimum_updated",
		event.Attribute{Key: "request_id", Value: strconv.FormatUint(msg.RequestId, 10)},
		event.Attribute{Key: "new_minimum", Value: msg.NewMinimum.String()},
	)
}

func (m msgServer) FulfillWithdrawal(ctx context.Context, msg *vault.MsgFulfillWithdrawal) (*vault.MsgFulfillWithdrawalResponse, error) {
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

	if msg.Processor != core.Processor && msg.Processor != core.Manager {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected processor or manager, got %s", msg.Processor)
	}

	request, found, err := m.GetWithdrawal(ctx, msg.RequestId)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get withdrawal request from state")
	}
	if !found {
		return nil, vault.ErrWithdrawalRequestNotFound
	}
	if request.Status != vault.WITHDRAWAL_STATUS_PENDING {
		return nil, vault.ErrInvalidWithdrawalStatus
	}
	if msg.User != request.User {
		return nil, vault.ErrInvalidUserAccount
	}

	// A fall in price beyond the downside cap means the user must choose to
	// cancel or wait; the processor cannot force a deep loss on them.
	if core.Price.LT(request.PriceAtRequest) {
		drop, err := priceDeviationBps(request.PriceAtRequest, core.Price)
		if err != nil {
			return nil, err
		}
		if drop.GT(math.NewIntFromUint64(uint64(config.DownsideCapBps))) {
			return nil, sdkerrors.Wrapf(vault.ErrPriceDropExceedsDownsideCap, "price drop of %s bps exceeds cap of %d bps", drop, config.DownsideCapBps)
		}
	}

	pay, err := convertToAssets(request.Shares, core.Price)
	if err != nil {
		return nil, err
	}
	// Gains after the request belong to the vault, so the payout never
	// exceeds the amount quoted when the request was made.
	if core.Price.GT(request.PriceAtRequest) {
		pay = request.AmountDue
	}
	if pay.LT(request.MinAmountOut) {
		pay = request.MinAmountOut
	}

	if pay.GT(core.TotalIdle) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientVaultFunds, "idle funds %s below payout %s", core.TotalIdle, pay)
	}
	moduleBalance := m.bank.GetBalance(ctx, types.ModuleAddress, m.underlyingDenom).Amount
	if pay.GT(moduleBalance) {
		return nil, sdkerrors.Wrapf(vault.ErrInsufficientVaultFunds, "vault balance %s below payout %s", moduleBalance, pay)
	}

	user, err := m.address.StringToBytes(request.User)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode user address %s", request.User)
	}

	if err := m.bank.BurnCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, request.Shares))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to burn withdrawn shares")
	}
	if request.FeeShares.IsPositive() {
		accountant, err := m.address.StringToBytes(core.Accountant)
		if err != nil {
			return nil, sdkerrors.Wrapf(err, "unable to decode accountant address %s", core.Accountant)
		}
		if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accountant, sdk.NewCoins(sdk.NewCoin(m.shareDenom, request.FeeShares))); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to transfer fee shares to accountant")
		}
	}
	if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, user, sdk.NewCoins(sdk.NewCoin(m.underlyingDenom, pay))); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to transfer payout to user")
	}

	custodyShares, err := request.Shares.SafeAdd(request.FeeShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.TotalShares, err = core.TotalShares.SafeSub(request.Shares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.SharesInCustody, err = core.SharesInCustody.SafeSub(custodyShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.TotalIdle, err = core.TotalIdle.SafeSub(pay)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.TotalWithdrawalsPending, err = core.TotalWithdrawalsPending.SafeSub(request.AmountDue)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	request.Status = vault.WITHDRAWAL_STATUS_FULFILLED
	request.ProcessedAt = m.header.GetHeaderInfo(ctx).Time
	if err := m.SetWithdrawal(ctx, msg.RequestId, request); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set withdrawal request")
	}

	return &vault.MsgFulfillWithdrawalResponse{
			AmountPaid: pay,
		}, m.emit(ctx, "withdrawal_fulfilled",
			event.Attribute{Key: "request_id", Value: strconv.FormatUint(msg.RequestId, 10)},
			event.Attribute{Key: "user", Value: request.User},
			event.Attribute{Key: "amount_paid", Value: pay.String()},
		)
}

func (m msgServer) CancelWithdrawal(ctx context.Context, msg *vault.MsgCancelWithdrawal) (*vault.MsgCancelWithdrawalResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	request, found, err := m.GetWithdrawal(ctx, msg.RequestId)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get withdrawal request from state")
	}
	if !found {
		return nil, vault.ErrWithdrawalRequestNotFound
	}
	if request.Status != vault.WITHDRAWAL_STATUS_PENDING {
		return nil, vault.ErrInvalidWithdrawalStatus
	}

	isUser := msg.Signer == request.User
	isBot := msg.Signer == core.Processor || msg.Signer == core.Manager
	if !isUser && !isBot {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "signer %s may not cancel request %d", msg.Signer, msg.RequestId)
	}

	now := m.header.GetHeaderInfo(ctx).Time
	ttlExpired := cooldownExpired(now, request.CreatedAt, config.WithdrawalTtlSecs)

	// Operators may only clear requests the vault failed to serve in time;
	// before the TTL a cancellation must come from the user.
	if isBot && !isUser && !ttlExpired {
		return nil, sdkerrors.Wrapf(vault.ErrTtlNotExpired, "request %d may not be cancelled by an operator before %s", msg.RequestId, request.CreatedAt.Add(cooldownDuration(config.WithdrawalTtlSecs)))
	}

	user, err := m.address.StringToBytes(request.User)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode user address %s", request.User)
	}

	custodyShares, err := request.Shares.SafeAdd(request.FeeShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}

	returned := custodyShares
	penalty := math.ZeroInt()

	if ttlExpired {
		// The vault missed its service window: the full share amount goes
		// back and the user is compensated with freshly minted shares.
		bonus, err := applyBasisPoints(request.Shares, config.SystemPenaltyBps)
		if err != nil {
			return nil, err
		}
		if bonus.IsPositive() {
			if err := m.bank.MintCoins(ctx, types.ModuleName, sdk.NewCoins(sdk.NewCoin(m.shareDenom, bonus))); err != nil {
				return nil, sdkerrors.Wrap(err, "unable to mint compensation shares")
			}
			core.TotalShares, err = core.TotalShares.SafeAdd(bonus)
			if err != nil {
				return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
			}
			returned, err = returned.SafeAdd(bonus)
			if err != nil {
				return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
			}
		}
	} else {
		// Early cancellation: the withdrawal fee is forfeited and an early
		// cancel fee is taken on top, both paid to the accountant.
		earlyFee, err := applyBasisPoints(request.Shares, config.EarlyCancelFeeBps)
		if err != nil {
			return nil, err
		}

		penalty, err = request.FeeShares.SafeAdd(earlyFee)
		if err != nil {
			return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
		}
		returned, err = custodyShares.SafeSub(penalty)
		if err != nil || returned.IsNegative() {
			return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "cancellation penalty exceeds custody shares")
		}

		if penalty.IsPositive() {
			accountant, err := m.address.StringToBytes(core.Accountant)
			if err != nil {
				return nil, sdkerrors.Wrapf(err, "unable to decode accountant address %s", core.Accountant)
			}
			if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, accountant, sdk.NewCoins(sdk.NewCoin(m.shareDenom, penalty))); err != nil {
				return nil, sdkerrors.Wrap(err, "unable to transfer penalty shares to accountant")
			}
		}
	}

	if returned.IsPositive() {
		if err := m.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, user, sdk.NewCoins(sdk.NewCoin(m.shareDenom, returned))); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to return shares to user")
		}
	}

	core.SharesInCustody, err = core.SharesInCustody.SafeSub(custodyShares)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	core.TotalWithdrawalsPending, err = core.TotalWithdrawalsPending.SafeSub(request.AmountDue)
	if err != nil {
		return nil, sdkerrors.Wrap(vault.ErrMathOverflow, err.Error())
	}
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}

	request.Status = vault.WITHDRAWAL_STATUS_CANCELLED
	request.ProcessedAt = now
	if err := m.SetWithdrawal(ctx, msg.RequestId, request); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set withdrawal request")
	}

	return &vault.MsgCancelWithdrawalResponse{
			SharesReturned: returned,
			PenaltyShares:  penalty,
		}, m.emit(ctx, "withdrawal_cancelled",
			event.Attribute{Key: "request_id", Value: strconv.FormatUint(msg.RequestId, 10)},
			event.Attribute{Key: "user", Value: request.User},
			event.Attribute{Key: "shares_returned", Value: returned.String()},
			event.Attribute{Key: "penalty_shares", Value: penalty.String()},
		)
}

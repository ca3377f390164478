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

	"github.com/dmtrbch/stoken-demo/types"
	"github.com/dmtrbch/stoken-demo/types/vault"
)

var _ vault.QueryServer = &queryServer{}

type queryServer struct {
	*Keeper
}

func NewQueryServer(keeper *Keeper) vault.QueryServer {
	return &queryServer{Keeper: keeper}
}

func (q queryServer) VaultState(ctx context.Context, req *vault.QueryVaultState) (*vault.QueryVaultStateResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	core, err := q.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := q.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}
	emergency, err := q.GetEmergencyState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get emergency state from state")
	}

	return &vault.QueryVaultStateResponse{
		Core:      core,
		Config:    config,
		Emergency: emergency,
	}, nil
}

func (q queryServer) WithdrawalRequest(ctx context.Context, req *vault.QueryWithdrawalRequest) (*vault.QueryWithdrawalRequestResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	request, found, err := q.GetWithdrawal(ctx, req.RequestId)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get withdrawal request from state")
	}
	if !found {
		return nil, vault.ErrWithdrawalRequestNotFound
	}

	return &vault.QueryWithdrawalRequestResponse{Request: request}, nil
}

func (q queryServer) Whitelisted(ctx context.Context, req *vault.QueryWhitelisted) (*vault.QueryWhitelistedResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	user, err := q.address.StringToBytes(req.User)
	if err != nil {
		return nil, sdkerrors.Wrapf(err, "unable to decode user address %s", req.User)
	}

	whitelisted, err := q.IsAddressWhitelisted(ctx, user)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to check whitelist")
	}

	return &vault.QueryWhitelistedResponse{Whitelisted: whitelisted}, nil
}

func (q queryServer) PreviewDeposit(ctx context.Context, req *vault.QueryPreviewDeposit) (*vault.QueryPreviewDepositResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	core, err := q.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	if req.Amount.IsNil() || !req.Amount.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "deposit amount must be positive")
	}

	netAmount, feeAmount, err := applyFee(req.Amount, core.DepositFeeBps)
	if err != nil {
		return nil, err
	}
	shares, err := convertToShares(netAmount, core.Price)
	if err != nil {
		return nil, err
	}
	feeShares, err := convertToShares(feeAmount, core.Price)
	if err != nil {
		return nil, err
	}

	return &vault.QueryPreviewDepositResponse{
		Shares:    shares,
		FeeShares: feeShares,
	}, nil
}

func (q queryServer) PreviewWithdraw(ctx context.Context, req *vault.QueryPreviewWithdraw) (*vault.QueryPreviewWithdrawResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	core, err := q.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	if req.Shares.IsNil() || !req.Shares.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidAmount, "share amount must be positive")
	}

	netShares, feeShares, err := applyFee(req.Shares, core.WithdrawFeeBps)
	if err != nil {
		return nil, err
	}
	amount, err := convertToAssets(netShares, core.Price)
	if err != nil {
		return nil, err
	}

	return &vault.QueryPreviewWithdrawResponse{
		Amount:    amount,
		FeeShares: feeShares,
	}, nil
}

func (q queryServer) MaxDeposit(ctx context.Context, req *vault.QueryMaxDeposit) (*vault.QueryMaxDepositResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest
	}

	core, err := q.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := q.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	if config.Paused {
		return &vault.QueryMaxDepositResponse{Amount: math.ZeroInt()}, nil
	}
	if !core.MaxTotalIdle.IsPositive() {
		// Idle cap disabled, no bound to report.
		return &vault.QueryMaxDepositResponse{Amount: math.ZeroInt()}, nil
	}

	headroom := core.MaxTotalIdle.Sub(core.TotalIdle)
	if headroom.IsNegative() {
		headroom = math.ZeroInt()
	}

	return &vault.QueryMaxDepositResponse{Amount: headroom}, nil
}

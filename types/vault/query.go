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

package vault

import (
	"context"

	"cosmossdk.io/math"
)

// QueryServer is the read-only view surface of the vault.
type QueryServer interface {
	VaultState(ctx context.Context, req *QueryVaultState) (*QueryVaultStateResponse, error)
	WithdrawalRequest(ctx context.Context, req *QueryWithdrawalRequest) (*QueryWithdrawalRequestResponse, error)
	Whitelisted(ctx context.Context, req *QueryWhitelisted) (*QueryWhitelistedResponse, error)
	PreviewDeposit(ctx context.Context, req *QueryPreviewDeposit) (*QueryPreviewDepositResponse, error)
	PreviewWithdraw(ctx context.Context, req *QueryPreviewWithdraw) (*QueryPreviewWithdrawResponse, error)
	MaxDeposit(ctx context.Context, req *QueryMaxDeposit) (*QueryMaxDepositResponse, error)
}

type QueryVaultState struct{}

type QueryVaultStateResponse struct {
	Core      CoreState
	Config    ConfigState
	Emergency EmergencyState
}

type QueryWithdrawalRequest struct {
	RequestId uint64
}

type QueryWithdrawalRequestResponse struct {
	Request WithdrawalRequest
}

type QueryWhitelisted struct {
	User string
}

type QueryWhitelistedResponse struct {
	Whitelisted bool
}

type QueryPreviewDeposit struct {
	Amount math.Int
}

type QueryPreviewDepositResponse struct {
	Shares    math.Int
	FeeShares math.Int
}

type QueryPreviewWithdraw struct {
	Shares math.Int
}

type QueryPreviewWithdrawResponse struct {
	Amount    math.Int
	FeeShares math.Int
}

type QueryMaxDeposit struct{}

type QueryMaxDepositResponse struct {
	// Amount is the remaining idle-fund headroom; nil-safe zero when the
	// vault is paused.
	Amount math.Int
}

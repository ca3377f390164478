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
	"time"

	"cosmossdk.io/math"
)

// MsgServer is the full mutating surface of the vault.
type MsgServer interface {
	InitVault(ctx context.Context, msg *MsgInitVault) (*MsgInitVaultResponse, error)

	Deposit(ctx context.Context, msg *MsgDeposit) (*MsgDepositResponse, error)
	AccrueManagementFee(ctx context.Context, msg *MsgAccrueManagementFee) (*MsgAccrueManagementFeeResponse, error)
	ProcessDeposits(ctx context.Context, msg *MsgProcessDeposits) (*MsgProcessDepositsResponse, error)
	ReturnFunds(ctx context.Context, msg *MsgReturnFunds) (*MsgReturnFundsResponse, error)

	RequestWithdrawal(ctx context.Context, msg *MsgRequestWithdrawal) (*MsgRequestWithdrawalResponse, error)
	UpdateWithdrawalMinimum(ctx context.Context, msg *MsgUpdateWithdrawalMinimum) (*MsgUpdateWithdrawalMinimumResponse, error)
	FulfillWithdrawal(ctx context.Context, msg *MsgFulfillWithdrawal) (*MsgFulfillWithdrawalResponse, error)
	CancelWithdrawal(ctx context.Context, msg *MsgCancelWithdrawal) (*MsgCancelWithdrawalResponse, error)

	UpdatePrice(ctx context.Context, msg *MsgUpdatePrice) (*MsgUpdatePriceResponse, error)
	AcceptPrice(ctx context.Context, msg *MsgAcceptPrice) (*MsgAcceptPriceResponse, error)
	RejectPrice(ctx context.Context, msg *MsgRejectPrice) (*MsgRejectPriceResponse, error)

	ProposeRoles(ctx context.Context, msg *MsgProposeRoles) (*MsgProposeRolesResponse, error)
	AcceptRoles(ctx context.Context, msg *MsgAcceptRoles) (*MsgAcceptRolesResponse, error)
	ProposeFees(ctx context.Context, msg *MsgProposeFees) (*MsgProposeFeesResponse, error)
	AcceptFees(ctx context.Context, msg *MsgAcceptFees) (*MsgAcceptFeesResponse, error)
	ProposeLimits(ctx context.Context, msg *MsgProposeLimits) (*MsgProposeLimitsResponse, error)
	AcceptLimits(ctx context.Context, msg *MsgAcceptLimits) (*MsgAcceptLimitsResponse, error)
	ProposeWhitelist(ctx context.Context, msg *MsgProposeWhitelist) (*MsgProposeWhitelistResponse, error)
	AcceptWhitelist(ctx context.Context, msg *MsgAcceptWhitelist) (*MsgAcceptWhitelistResponse, error)
	ProposeCooldowns(ctx context.Context, msg *MsgProposeCooldowns) (*MsgProposeCooldownsResponse, error)
	AcceptCooldowns(ctx context.Context, msg *MsgAcceptCooldowns) (*MsgAcceptCooldownsResponse, error)

	PauseVault(ctx context.Context, msg *MsgPauseVault) (*MsgPauseVaultResponse, error)
	UnpauseVault(ctx context.Context, msg *MsgUnpauseVault) (*MsgUnpauseVaultResponse, error)
	EmergencyWithdraw(ctx context.Context, msg *MsgEmergencyWithdraw) (*MsgEmergencyWithdrawResponse, error)
	SweepUnexpectedDeposits(ctx context.Context, msg *MsgSweepUnexpectedDeposits) (*MsgSweepUnexpectedDepositsResponse, error)

	AddToWhitelist(ctx context.Context, msg *MsgAddToWhitelist) (*MsgAddToWhitelistResponse, error)
	RemoveFromWhitelist(ctx context.Context, msg *MsgRemoveFromWhitelist) (*MsgRemoveFromWhitelistResponse, error)
	AcceptAllowlistMint(ctx context.Context, msg *MsgAcceptAllowlistMint) (*MsgAcceptAllowlistMintResponse, error)
	CancelAllowlistMint(ctx context.Context, msg *MsgCancelAllowlistMint) (*MsgCancelAllowlistMintResponse, error)

	SwapShares(ctx context.Context, msg *MsgSwapShares) (*MsgSwapSharesResponse, error)
}

// MsgInitVault installs the vault configuration. Nil optional fields fall
// back to the documented defaults.
type MsgInitVault struct {
	Authority    string
	Oracle       string
	Manager      string
	Processor    string
	Accountant   string
	AssetManager string

	DepositFeeBps           uint32
	WithdrawFeeBps          uint32
	ManagementFeeBpsPerYear uint32
	Decimals                uint32

	InitialPrice     *math.Int
	MaxTotalShares   *math.Int
	MaxSharesPerUser *math.Int
	MaxTotalIdle     *math.Int
	MinSharesToMint  *math.Int
	MaxDeviationBps  *uint32

	PriceUpdateCooldownSecs     *int64
	PriceAcceptanceCooldownSecs *int64
	ConfigCooldownSecs          *int64
	RoleChangeCooldownSecs      *int64
	FeeChangeCooldownSecs       *int64
	EmergencyCooldownSecs       *int64

	WhitelistEnabled  *bool
	DownsideCapBps    *uint32
	WithdrawalTtlSecs *int64
	EarlyCancelFeeBps *uint32
	SystemPenaltyBps  *uint32
}

type MsgInitVaultResponse struct{}

type MsgDeposit struct {
	Depositor string
	Amount    math.Int
	// MinShares is the slippage floor on shares received. Nil disables it.
	MinShares math.Int
	// Beneficiary receives the minted shares, defaulting to the depositor.
	Beneficiary string
}

type MsgDepositResponse struct {
	SharesMinted math.Int
	FeeShares    math.Int
}

type MsgAccrueManagementFee struct {
	Signer string
}

type MsgAccrueManagementFeeResponse struct {
	FeeShares math.Int
}

type MsgProcessDeposits struct {
	Processor string
	Amount    math.Int
}

type MsgProcessDepositsResponse struct{}

type MsgReturnFunds struct {
	AssetManager string
	Amount       math.Int
}

type MsgReturnFundsResponse struct{}

type MsgRequestWithdrawal struct {
	Requester    string
	Shares       math.Int
	MinAmountOut math.Int
}

type MsgRequestWithdrawalResponse struct {
	RequestId uint64
	AmountDue math.Int
	FeeShares math.Int
}

type MsgUpdateWithdrawalMinimum struct {
	Requester  string
	RequestId  uint64
	NewMinimum math.Int
}

type MsgUpdateWithdrawalMinimumResponse struct{}

type MsgFulfillWithdrawal struct {
	Processor string
	User      string
	RequestId uint64
}

type MsgFulfillWithdrawalResponse struct {
	AmountPaid math.Int
}

type MsgCancelWithdrawal struct {
	Signer    string
	RequestId uint64
}

type MsgCancelWithdrawalResponse struct {
	SharesReturned math.Int
	PenaltyShares  math.Int
}

type MsgUpdatePrice struct {
	Oracle   string
	NewPrice math.Int
}

type MsgUpdatePriceResponse struct {
	// Applied reports whether the price took effect immediately instead of
	// parking as a pending price.
	Applied bool
}

type MsgAcceptPrice struct {
	Signer string
}

type MsgAcceptPriceResponse struct {
	Price math.Int
}

type MsgRejectPrice struct {
	Manager string
}

type MsgRejectPriceResponse struct{}

type MsgProposeRoles struct {
	Manager         string
	NewManager      *string
	NewProcessor    *string
	NewAccountant   *string
	NewOracle       *string
	NewAssetManager *string
}

type MsgProposeRolesResponse struct{}

type MsgAcceptRoles struct {
	Manager string
}

type MsgAcceptRolesResponse struct{}

type MsgProposeFees struct {
	Manager                    string
	NewDepositFeeBps           *uint32
	NewWithdrawFeeBps          *uint32
	NewManagementFeeBpsPerYear *uint32
}

type MsgProposeFeesResponse struct{}

type MsgAcceptFees struct {
	Manager string
}

type MsgAcceptFeesResponse struct{}

type MsgProposeLimits struct {
	Manager             string
	NewMaxTotalShares   *math.Int
	NewMaxSharesPerUser *math.Int
	NewMaxTotalIdle     *math.Int
	NewMinSharesToMint  *math.Int
	NewMaxDeviationBps  *uint32
}

type MsgProposeLimitsResponse struct{}

type MsgAcceptLimits struct {
	Manager string
}

type MsgAcceptLimitsResponse struct{}

type MsgProposeWhitelist struct {
	Manager string
	Enabled bool
}

type MsgProposeWhitelistResponse struct{}

type MsgAcceptWhitelist struct {
	Manager string
}

type MsgAcceptWhitelistResponse struct{}

type MsgProposeCooldowns struct {
	Manager                        string
	NewPriceUpdateCooldownSecs     *int64
	NewPriceAcceptanceCooldownSecs *int64
	NewConfigCooldownSecs          *int64
	NewEmergencyCooldownSecs       *int64
	NewRoleChangeCooldownSecs      *int64
	NewFeeChangeCooldownSecs       *int64
}

type MsgProposeCooldownsResponse struct{}

type MsgAcceptCooldowns struct {
	Manager string
}

type MsgAcceptCooldownsResponse struct{}

type MsgPauseVault struct {
	Manager string
}

type MsgPauseVaultResponse struct{}

type MsgUnpauseVault struct {
	Manager string
}

type MsgUnpauseVaultResponse struct{}

type MsgEmergencyWithdraw struct {
	Manager   string
	Denom     string
	Amount    math.Int
	Recipient string
}

type MsgEmergencyWithdrawResponse struct {
	// Executed is false on the arming call that starts the timelock.
	Executed     bool
	ExecutableAt time.Time
}

type MsgSweepUnexpectedDeposits struct {
	Manager   string
	Denom     string
	Recipient string
}

type MsgSweepUnexpectedDepositsResponse struct {
	AmountSwept math.Int
}

type MsgAddToWhitelist struct {
	Manager string
	User    string
}

type MsgAddToWhitelistResponse struct{}

type MsgRemoveFromWhitelist struct {
	Manager string
	User    string
}

type MsgRemoveFromWhitelistResponse struct{}

type MsgAcceptAllowlistMint struct {
	Manager string
	Mint    string
}

type MsgAcceptAllowlistMintResponse struct{}

type MsgCancelAllowlistMint struct {
	Manager string
	Mint    string
}

type MsgCancelAllowlistMintResponse struct{}

type MsgSwapShares struct {
	Caller               string
	DestinationMint      string
	Amount               math.Int
	MinDestinationAmount math.Int
	// SwapFeeBps overrides DefaultSwapFeeBps when set.
	SwapFeeBps *uint32
}

type MsgSwapSharesResponse struct {
	DestinationShares math.Int
	FeeShares         math.Int
}

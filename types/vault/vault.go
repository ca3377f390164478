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
	"time"

	"cosmossdk.io/math"
)

// CoreState is the accounting heart of the vault: role assignments, fee
// parameters, the fixed-point share price and the aggregate counters every
// operation reads and writes.
type CoreState struct {
	Authority    string
	Oracle       string
	Manager      string
	Processor    string
	Accountant   string
	AssetManager string

	DepositFeeBps           uint32
	WithdrawFeeBps          uint32
	ManagementFeeBpsPerYear uint32

	// Price is fixed point: PricePrecision equals one underlying unit.
	Price                   math.Int
	TotalShares             math.Int
	TotalIdle               math.Int
	TotalWithdrawalsPending math.Int
	SharesInCustody         math.Int

	// Limits of zero disable the respective check.
	MaxTotalShares   math.Int
	MaxSharesPerUser math.Int
	MaxTotalIdle     math.Int
	MinSharesToMint  math.Int

	// MaxDeviationBps is the largest price move the oracle may auto-apply.
	MaxDeviationBps uint32

	Decimals uint32

	LastManagementFeeTime time.Time
	LastPriceUpdateTime   time.Time
	CreatedAt             time.Time
}

// ConfigState carries the durable toggles and cooldown durations.
type ConfigState struct {
	PriceUpdateCooldownSecs     int64
	PriceAcceptanceCooldownSecs int64
	ConfigCooldownSecs          int64
	RoleChangeCooldownSecs      int64
	FeeChangeCooldownSecs       int64

	// Withdrawal lifecycle parameters.
	DownsideCapBps    uint32
	WithdrawalTtlSecs int64
	EarlyCancelFeeBps uint32
	SystemPenaltyBps  uint32

	WhitelistEnabled bool
	Paused           bool
}

// EmergencyState tracks the two-phase emergency withdrawal flow. A zero
// TimelockEnd means no request has been armed.
type EmergencyState struct {
	TimelockEnd   time.Time
	CooldownSecs  int64
	PendingDenom  string
	PendingAmount math.Int
}

// PendingPrice is an oracle price awaiting acceptance.
type PendingPrice struct {
	Value      math.Int
	ProposedAt time.Time
}

// PendingRoles holds proposed role reassignments. Nil fields are untouched
// on acceptance.
type PendingRoles struct {
	NewManager      *string
	NewProcessor    *string
	NewAccountant   *string
	NewOracle       *string
	NewAssetManager *string
	ProposedAt      time.Time
}

type PendingFees struct {
	NewDepositFeeBps           *uint32
	NewWithdrawFeeBps          *uint32
	NewManagementFeeBpsPerYear *uint32
	ProposedAt                 time.Time
}

type PendingLimits struct {
	NewMaxTotalShares   *math.Int
	NewMaxSharesPerUser *math.Int
	NewMaxTotalIdle     *math.Int
	NewMinSharesToMint  *math.Int
	NewMaxDeviationBps  *uint32
	ProposedAt          time.Time
}

type PendingWhitelist struct {
	NewEnabled *bool
	ProposedAt time.Time
}

type PendingCooldowns struct {
	NewPriceUpdateCooldownSecs     *int64
	NewPriceAcceptanceCooldownSecs *int64
	NewConfigCooldownSecs          *int64
	NewEmergencyCooldownSecs       *int64
	NewRoleChangeCooldownSecs      *int64
	NewFeeChangeCooldownSecs       *int64
	ProposedAt                     time.Time
}

type WithdrawalStatus int32

const (
	WITHDRAWAL_STATUS_UNSPECIFIED WithdrawalStatus = 0
	WITHDRAWAL_STATUS_PENDING     WithdrawalStatus = 1
	WITHDRAWAL_STATUS_FULFILLED   WithdrawalStatus = 2
	WITHDRAWAL_STATUS_CANCELLED   WithdrawalStatus = 3
)

// WithdrawalRequest is a queued withdrawal. Shares is the net share amount
// after the withdrawal fee; FeeShares records the fee portion separately.
// Both are held in custody by the module account until the request
// terminates. Requests are retained after fulfillment or cancellation for
// audit reads.
type WithdrawalRequest struct {
	User           string
	Shares         math.Int
	FeeShares      math.Int
	AmountDue      math.Int
	MinAmountOut   math.Int
	PriceAtRequest math.Int
	Status         WithdrawalStatus
	CreatedAt      time.Time
	ProcessedAt    time.Time
}

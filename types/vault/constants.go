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

const (
	// PricePrecision is the fixed-point scale of the share price. A price of
	// exactly PricePrecision values one share at one underlying unit.
	PricePrecision = 10_000_000

	BpsPrecision = 10_000

	MaxFeeBps                  = 1_000
	MaxManagementFeeBpsPerYear = 500
	MaxSwapFeeBps              = 100
	DefaultSwapFeeBps          = 10

	// MinFeeThreshold is the smallest fee charged whenever a non-zero fee
	// rate rounds to zero, so fees cannot be dodged with small amounts.
	MinFeeThreshold = 1

	SecondsPerYear = 365 * 24 * 60 * 60

	// MaxManagerBypassDeviationBps bounds the price deviation for which the
	// manager may accept a pending price without waiting out the cooldown.
	MaxManagerBypassDeviationBps = 2_000

	MinCooldownSecs = 1
	MaxCooldownSecs = SecondsPerYear

	DefaultMaxDeviationBps             = 500
	DefaultPriceUpdateCooldownSecs     = 300
	DefaultPriceAcceptanceCooldownSecs = 300
	DefaultConfigCooldownSecs          = 86_400
	DefaultFeeChangeCooldownSecs       = 86_400
	DefaultRoleChangeCooldownSecs      = 172_800
	DefaultEmergencyCooldownSecs       = 86_400

	DefaultDownsideCapBps    = 500
	DefaultWithdrawalTtlSecs = 86_400
	MaxWithdrawalTtlSecs     = 7 * 86_400
	DefaultEarlyCancelFeeBps = 100
	DefaultSystemPenaltyBps  = 50
)

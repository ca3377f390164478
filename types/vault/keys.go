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

const SubmoduleName = "stoken/vault"

var (
	CoreStateKey        = []byte("vault/core_state")
	ConfigStateKey      = []byte("vault/config_state")
	EmergencyStateKey   = []byte("vault/emergency_state")
	PendingPriceKey     = []byte("vault/pending_price")
	PendingRolesKey     = []byte("vault/pending_roles")
	PendingFeesKey      = []byte("vault/pending_fees")
	PendingLimitsKey    = []byte("vault/pending_limits")
	PendingWhitelistKey = []byte("vault/pending_whitelist")
	PendingCooldownsKey = []byte("vault/pending_cooldowns")
	WithdrawalPrefix    = []byte("vault/withdrawal/")
	WithdrawalNextIDKey = []byte("vault/withdrawal_next_id")
	WhitelistPrefix     = []byte("vault/whitelist/")
	AllowlistPrefix     = []byte("vault/allowlist_mint/")
)

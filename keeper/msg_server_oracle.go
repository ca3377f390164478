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
	"cosmossdk.io/math"

	"github.com/dmtrbch/stoken-demo/types/vault"
)

func (m msgServer) UpdatePrice(ctx context.Context, msg *vault.MsgUpdatePrice) (*vault.MsgUpdatePriceResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	if msg.Oracle != core.Oracle {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected oracle %s, got %s", core.Oracle, msg.Oracle)
	}
	if msg.NewPrice.IsNil() || !msg.NewPrice.IsPositive() {
		return nil, sdkerrors.Wrap(vault.ErrInvalidPrice, "price must be positive")
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, core.LastPriceUpdateTime, config.PriceUpdateCooldownSecs) {
		return nil, sdkerrors.Wrapf(vault.ErrPriceUpdateTooFrequent, "next update allowed at %s", core.LastPriceUpdateTime.Add(cooldownDuration(config.PriceUpdateCooldownSecs)))
	}

	deviation, err := priceDeviationBps(core.Price, msg.NewPrice)
	if err != nil {
		return nil, err
	}

	// The deviation gate only exists when both a bound and an acceptance
	// cooldown are configured. Moves beyond the bound park as a pending
	// price awaiting explicit acceptance; the oracle's cadence is left
	// untouched so a corrected submission is not rate-limited.
	gated := core.MaxDeviationBps > 0 && config.PriceAcceptanceCooldownSecs > 0
	if gated && deviation.GT(math.NewIntFromUint64(uint64(core.MaxDeviationBps))) {
		if err := m.SetPendingPrice(ctx, vault.PendingPrice{
			Value:      msg.NewPrice,
			ProposedAt: now,
		}); err != nil {
			return nil, sdkerrors.Wrap(err, "unable to set pending price")
		}

		return &vault.MsgUpdatePriceResponse{Applied: false}, m.emit(ctx, "price_proposed",
			event.Attribute{Key: "price", Value: msg.NewPrice.String()},
			event.Attribute{Key: "deviation_bps", Value: deviation.String()},
		)
	}

	core.Price = msg.NewPrice
	core.LastPriceUpdateTime = now
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.ClearPendingPrice(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending price")
	}

	return &vault.MsgUpdatePriceResponse{Applied: true}, m.emit(ctx, "price_updated",
		event.Attribute{Key: "price", Value: msg.NewPrice.String()},
		event.Attribute{Key: "deviation_bps", Value: deviation.String()},
	)
}

func (m msgServer) AcceptPrice(ctx context.Context, msg *vault.MsgAcceptPrice) (*vault.MsgAcceptPriceResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}
	config, err := m.GetConfigState(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get config state from state")
	}

	if msg.Signer != core.Manager && msg.Signer != core.Processor && msg.Signer != core.Oracle {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected manager, processor or oracle, got %s", msg.Signer)
	}

	pending, found, err := m.GetPendingPrice(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending price from state")
	}
	if !found {
		return nil, vault.ErrNoPendingPrice
	}

	now := m.header.GetHeaderInfo(ctx).Time
	if !cooldownExpired(now, pending.ProposedAt, config.PriceAcceptanceCooldownSecs) {
		// Only the manager may shortcut the waiting period, and only for
		// moves within the bypass bound.
		if msg.Signer != core.Manager {
			return nil, sdkerrors.Wrapf(vault.ErrPriceCooldownNotExpired, "acceptance allowed at %s", pending.ProposedAt.Add(cooldownDuration(config.PriceAcceptanceCooldownSecs)))
		}

		deviation, err := priceDeviationBps(core.Price, pending.Value)
		if err != nil {
			return nil, err
		}
		if deviation.GT(math.NewInt(vault.MaxManagerBypassDeviationBps)) {
			return nil, sdkerrors.Wrapf(vault.ErrPriceDeviationTooHigh, "deviation of %s bps exceeds bypass bound of %d bps", deviation, vault.MaxManagerBypassDeviationBps)
		}
	}

	core.Price = pending.Value
	core.LastPriceUpdateTime = now
	if err := m.SetCoreState(ctx, core); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to set core state")
	}
	if err := m.ClearPendingPrice(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending price")
	}

	return &vault.MsgAcceptPriceResponse{
			Price: pending.Value,
		}, m.emit(ctx, "price_accepted",
			event.Attribute{Key: "price", Value: pending.Value.String()},
			event.Attribute{Key: "signer", Value: msg.Signer},
		)
}

func (m msgServer) RejectPrice(ctx context.Context, msg *vault.MsgRejectPrice) (*vault.MsgRejectPriceResponse, error) {
	core, err := m.requireCoreState(ctx)
	if err != nil {
		return nil, err
	}

	if msg.Manager != core.Manager {
		return nil, sdkerrors.Wrapf(vault.ErrUnauthorized, "expected manager %s, got %s", core.Manager, msg.Manager)
	}

	pending, found, err := m.GetPendingPrice(ctx)
	if err != nil {
		return nil, sdkerrors.Wrap(err, "unable to get pending price from state")
	}
	if !found {
		return nil, vault.ErrNoPendingPrice
	}

	if err := m.ClearPendingPrice(ctx); err != nil {
		return nil, sdkerrors.Wrap(err, "unable to clear pending price")
	}

	return &vault.MsgRejectPriceResponse{}, m.emit(ctx, "price_rejected",
		event.Attribute{Key: "price", Value: pending.Value.String()},
	)
}

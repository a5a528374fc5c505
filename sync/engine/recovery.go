package engine

import (
	"time"

	"github.com/WeiqiJust/NDN-Repo/face"
	"github.com/WeiqiJust/NDN-Repo/params"
	"github.com/WeiqiJust/NDN-Repo/sync/names"
	"github.com/WeiqiJust/NDN-Repo/sync/wire"
)

// startRecovery expresses a recovery Interest carrying the current local
// digest, and begins the exponential-backoff retransmission schedule
// (spec.md §4.7 "recovery retransmission").
func (e *Engine) startRecovery() {
	digest := e.tree.RootDigest()
	e.recoveryDigest = digest
	e.recoveryActive = true
	e.recoveryInterval = e.cfg.Params.RecoveryRetransmitInitial
	e.expressRecovery()
}

func (e *Engine) expressRecovery() {
	if !e.recoveryActive {
		return
	}
	name := names.RecoveryInterest(e.cfg.SyncPrefix, e.recoveryDigest[:])
	e.cfg.Face.ExpressInterest(
		face.Interest{Name: name, MustBeFresh: true, Lifetime: e.cfg.Params.DefaultInterestLifetime},
		func(d face.Data) {
			e.submit(func() { e.onRecoveryData(d) })
		},
		func() {
			e.submit(e.recoveryRetransmit)
		},
	)
}

func (e *Engine) recoveryRetransmit() {
	if !e.recoveryActive {
		return
	}
	if e.recoveryTimer != nil {
		e.recoveryTimer.Stop()
	}
	delay := e.recoveryInterval + e.jitter(params.JitterMin, params.JitterMax)
	e.recoveryTimer = time.AfterFunc(delay, func() {
		e.submit(e.expressRecovery)
	})
	e.recoveryInterval *= 2
	if e.recoveryInterval > params.RecoveryBackoffCap {
		e.recoveryInterval = params.RecoveryBackoffCap
	}
}

func (e *Engine) cancelRecovery() {
	e.recoveryActive = false
	if e.recoveryTimer != nil {
		e.recoveryTimer.Stop()
		e.recoveryTimer = nil
	}
}

func (e *Engine) onRecoveryData(d face.Data) {
	if !e.validateSyncData(d) {
		return
	}
	msg, err := wire.Decode(d.Content)
	if err != nil {
		e.cfg.Logger.Debug("recovery response decode failed", "err", err)
		return
	}
	e.cancelRecovery()
	if msg.Type != wire.TypeActionNameList {
		return
	}
	for _, p := range msg.Names {
		e.prepareFetchForRecovery(p.Creator, p.Seq)
	}
}

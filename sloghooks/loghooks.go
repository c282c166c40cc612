package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/casbucket"
)

type Options struct {
	// Sampling for the contention event to avoid floods; 0/1 = log all.
	SwapLostEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix: bucket keys often
	// embed user or tenant identifiers.
	Redact func([]byte) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	swapLostCtr atomic.Uint64
}

var _ casbucket.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k []byte) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256(k)
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SwapLost(key []byte, create bool) {
	if h.l == nil || !sample(h.opts.SwapLostEvery, &h.swapLostCtr) {
		return
	}
	h.l.Debug("casbucket.swap_lost",
		"key", h.redact(key),
		"create", create)
}

func (h *Hooks) ProtocolViolation(key []byte, reply any) {
	if h.l == nil {
		return
	}
	h.l.Error("casbucket.protocol_violation",
		"key", h.redact(key),
		"reply", reply)
}

func (h *Hooks) RetriesExhausted(key []byte, attempts int) {
	if h.l == nil {
		return
	}
	h.l.Warn("casbucket.retries_exhausted",
		"key", h.redact(key),
		"attempts", attempts)
}

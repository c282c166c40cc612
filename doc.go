// Package casbucket synchronizes one versioned piece of state per key (a
// rate limiter's bucket state) across independent processes through a shared
// remote key-value store. Correctness comes purely from optimistic
// compare-and-swap: every write is an atomic server-side script that either
// creates the key if absent or replaces it only when the stored bytes still
// equal the bytes the writer last read. No locks, no leader.
//
// Components:
//   - backend.Backend: the minimal capability port (Get, Eval, Del) any
//     store must offer. Redis adapters (single node and cluster) ship under
//     backend/redis; a deterministic in-process store under backend/local.
//   - Manager: one read round-trip plus one conditional-write round-trip per
//     attempt, and a bounded Execute retry loop on top.
//   - ExpirationStrategy: maps the new bucket state plus a fresh clock read
//     to a TTL; non-positive means the value is stored without expiry.
//   - codec.Codec[V]: (de)serializes bucket state at the caller boundary;
//     the core itself never inspects payload bytes.
//
// CAS pattern:
//
//	cur, _ := mgr.ReadCurrent(ctx, key)       // bytes or absent
//	next, state := recompute(cur)             // caller-side bucket math
//	ok, _ := mgr.AttemptSwap(ctx, key, cur, next, state)
//	// ok=false means another writer won; re-read and retry (or use Execute).
package casbucket

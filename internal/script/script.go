// Package script holds the atomic conditional-write variants evaluated
// server-side by the backend. Two independent axes select a variant: key
// absent vs present, and TTL requested vs not.
//
// Every variant returns exactly 1 on success and 0 when its precondition no
// longer holds (another writer created, replaced, or deleted the key). The
// engine additionally tolerates a nil reply as failure, for backends that
// surface Lua false as a null reply.
//
// Create stays a separate family from compare-and-swap: comparing against a
// value that does not exist is unreliable on some backends, and the create
// branch never needs a comparison operand at all.
package script

const (
	// CreateIfAbsent sets the key only when absent. ARGV[1] = new value.
	CreateIfAbsent = `return redis.call('setnx', KEYS[1], ARGV[1])`

	// CreateIfAbsentTTL sets the key only when absent, with a TTL.
	// ARGV[1] = new value, ARGV[2] = TTL in milliseconds.
	CreateIfAbsentTTL = `if redis.call('set', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then return 1 else return 0 end`

	// CompareAndSwap replaces the value only when it still equals the bytes
	// this writer last read. ARGV[1] = expected value, ARGV[2] = new value.
	CompareAndSwap = `if redis.call('get', KEYS[1]) == ARGV[1] then redis.call('set', KEYS[1], ARGV[2]) return 1 else return 0 end`

	// CompareAndSwapTTL is CompareAndSwap with a TTL on the new value.
	// ARGV[3] = TTL in milliseconds. The new TTL fully replaces any old one.
	CompareAndSwapTTL = `if redis.call('get', KEYS[1]) == ARGV[1] then redis.call('set', KEYS[1], ARGV[2], 'PX', ARGV[3]) return 1 else return 0 end`
)

package diyredis

// --- 4.F Transaction buffer ----------------------------------------------
//
// Per-connection command buffering (spec.md §4.F). This state lives on the
// Session, not the Engine: it must not be addressable from other
// connections (spec.md §9 design notes).

// transaction holds one connection's MULTI/EXEC/DISCARD state.
type transaction struct {
	inMulti bool
	queue   [][]string
}

// begin starts (or, per the source's permissive nested-MULTI behavior,
// restarts) a transaction. See DESIGN.md for the open-question writeup:
// the reference source resets the queue on a nested MULTI rather than
// erroring, and this rewrite keeps that behavior.
func (t *transaction) begin() {
	t.inMulti = true
	t.queue = t.queue[:0]
}

// enqueue buffers a command while inside a transaction. No validation of
// command shape happens at queue time, matching spec.md §4.F.
func (t *transaction) enqueue(cmd []string) {
	t.queue = append(t.queue, cmd)
}

// discard clears transaction state without executing the queue.
func (t *transaction) discard() {
	t.inMulti = false
	t.queue = nil
}

// drain exits the transaction and returns the queued commands for
// execution.
func (t *transaction) drain() [][]string {
	queued := t.queue
	t.inMulti = false
	t.queue = nil
	return queued
}

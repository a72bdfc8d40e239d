// Package transaction implements the transactional arrangement engine
// (spec.md §4.7): configures are sent with fresh serials, acks are
// gathered, and a single commit promotes every participating view's
// inflight state to current together, or the timeout fires and commits
// best-effort.
package transaction

import (
	"time"

	"github.com/riverwm/river/internal/slotmap"
)

// DefaultTimeout is the default transaction timeout (spec.md §4.7, §9:
// "not constant across the source history... make it configurable with
// a safe default").
const DefaultTimeout = 200 * time.Millisecond

// Participant is one view's role in an in-flight transaction.
type Participant struct {
	View           slotmap.Key
	ExpectedSerial uint32
	Acked          bool
	// NeedsAck is false for views whose configure doesn't change size;
	// those are promoted immediately without waiting for an ack
	// (spec.md §4.7 step 2).
	NeedsAck bool
}

// Configurer is implemented by the caller (Root) to perform the actual
// per-view work a transaction drives: sending a configure, and, on
// commit, promoting inflight to current and scheduling a frame.
type Configurer interface {
	// SendConfigure asks the view to resize/reconfigure and returns the
	// serial the client is expected to ack.
	SendConfigure(v slotmap.Key) (serial uint32, changesSize bool)
	// Promote moves v's Inflight fields to Current. Called once per
	// participant: from New for views whose configure does not change
	// size, and at commit time for the rest.
	Promote(v slotmap.Key)
	// ScheduleFrame is called once per commit to paint the result.
	ScheduleFrame()
}

// Transaction is one batch of configures whose results commit together
// (spec.md §4.7, GLOSSARY).
type Transaction struct {
	participants []Participant
	timer        *time.Timer
	timeout      time.Duration
	committed    bool
	configurer   Configurer
	onCommit     func()
}

// New starts a transaction over views, asking configurer to send a
// configure to each. Views whose configure does not change size are
// promoted immediately (spec.md §4.7 step 2) and do not wait for an
// ack. onTimeout is invoked if the timer fires before all acks arrive;
// it receives the transaction so it can call CommitOnTimeout (spec.md
// §4.7 step 6: "commit anyway with the last-known buffer").
func New(configurer Configurer, views []slotmap.Key, timeout time.Duration, onTimeout func(*Transaction)) *Transaction {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	tx := &Transaction{configurer: configurer, timeout: timeout}
	for _, v := range views {
		serial, changesSize := configurer.SendConfigure(v)
		p := Participant{View: v, ExpectedSerial: serial, NeedsAck: changesSize}
		if !changesSize {
			configurer.Promote(v)
			p.Acked = true
		}
		tx.participants = append(tx.participants, p)
	}
	if tx.allAcked() {
		tx.commitNow()
		return tx
	}
	tx.timer = time.AfterFunc(timeout, func() {
		if onTimeout != nil {
			onTimeout(tx)
		}
	})
	return tx
}

// Ack records a client's ack of serial for v. Acks for a stale (older)
// serial are ignored (spec.md §4.7 invariant: "Serials are monotonic per
// client; an ack for an older serial is ignored"). If this was the last
// outstanding participant, the transaction commits immediately.
func (tx *Transaction) Ack(v slotmap.Key, serial uint32) {
	if tx.committed {
		return
	}
	for i := range tx.participants {
		p := &tx.participants[i]
		if p.View == v && !p.Acked {
			if serial != p.ExpectedSerial {
				return // stale ack, ignored
			}
			p.Acked = true
			break
		}
	}
	if tx.allAcked() {
		tx.commitNow()
	}
}

// RemoveParticipant drops v from the participant set (a view destroyed
// mid-transaction, spec.md §4.7 invariant). Commit proceeds without it;
// if every remaining participant is already acked, this commits
// immediately.
func (tx *Transaction) RemoveParticipant(v slotmap.Key) {
	if tx.committed {
		return
	}
	for i := range tx.participants {
		if tx.participants[i].View == v {
			tx.participants = append(tx.participants[:i], tx.participants[i+1:]...)
			break
		}
	}
	if tx.allAcked() {
		tx.commitNow()
	}
}

func (tx *Transaction) allAcked() bool {
	for _, p := range tx.participants {
		if !p.Acked {
			return false
		}
	}
	return true
}

// CommitOnTimeout is called by the timer callback: it marks every
// still-un-acked participant as acked and commits, so those views are
// promoted without their ack (the stashed buffer, spec.md §4.7 step 6)
// rather than stalling the transaction.
func (tx *Transaction) CommitOnTimeout() {
	if tx.committed {
		return
	}
	for i := range tx.participants {
		tx.participants[i].Acked = true
	}
	tx.commitNow()
}

func (tx *Transaction) commitNow() {
	if tx.committed {
		return
	}
	tx.committed = true
	if tx.timer != nil {
		tx.timer.Stop()
	}
	// Views that waited for an ack are promoted here, together; the
	// others were already promoted by New.
	for _, p := range tx.participants {
		if p.NeedsAck {
			tx.configurer.Promote(p.View)
		}
	}
	tx.configurer.ScheduleFrame()
}

// Committed reports whether this transaction has committed (all acks
// in, or timeout fired).
func (tx *Transaction) Committed() bool { return tx.committed }

// Participants returns a snapshot of the transaction's participant set,
// for inspection/testing.
func (tx *Transaction) Participants() []Participant {
	out := make([]Participant, len(tx.participants))
	copy(out, tx.participants)
	return out
}

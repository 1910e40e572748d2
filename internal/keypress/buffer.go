package keypress

import (
	"strings"
	"time"
)

// Category classifies a Keypress record for consumers that want to style
// combinations differently from plain characters.
type Category int

const (
	CategoryCharacter Category = iota
	CategorySpecial
	CategoryCombination
)

// Keypress is one entry in the display buffer.
type Keypress struct {
	Symbol      string
	Category    Category
	Modifiers   ModifierState
	IsSpecial   bool
	RepeatCount uint32
	FirstSeen   time.Time
	LastSeen    time.Time
}

var subscriptDigits = map[byte]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
}

// Render produces the text this record contributes to the display buffer's
// text, appending the "ₓ<count>" repeat suffix once repeat_count reaches 3.
func (k Keypress) Render() string {
	if k.RepeatCount < 3 {
		return k.Symbol
	}
	var b strings.Builder
	b.WriteString(k.Symbol)
	b.WriteRune('ₓ')
	for _, c := range []byte(itoaUint(k.RepeatCount)) {
		b.WriteRune(subscriptDigits[c])
	}
	return b.String()
}

func itoaUint(n uint32) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// Buffer is the ordered, bounded, time-limited sequence of Keypress
// records painted on screen. It is owned solely by the scheduler goroutine;
// nothing here is safe for concurrent use.
type Buffer struct {
	records     []Keypress
	maxLength   int
	idleTimeout time.Duration
}

// NewBuffer constructs an empty buffer bounded by maxLength columns and
// idleTimeout record lifetime.
func NewBuffer(maxLength int, idleTimeout time.Duration) *Buffer {
	return &Buffer{maxLength: maxLength, idleTimeout: idleTimeout}
}

// Len reports the current number of records (not display columns).
func (b *Buffer) Len() int { return len(b.records) }

// IsEmpty reports whether the buffer holds no records.
func (b *Buffer) IsEmpty() bool { return len(b.records) == 0 }

// Append adds a new record, merging into the tail record per (I3) when the
// symbol is unchanged, then enforces (I4)'s length bound by evicting from
// the front. Returns true if the buffer's visible content changed.
func (b *Buffer) Append(k Keypress) bool {
	if n := len(b.records); n > 0 && b.records[n-1].Symbol == k.Symbol {
		b.records[n-1].RepeatCount++
		b.records[n-1].LastSeen = k.LastSeen
		return true
	}
	k.RepeatCount = 1
	b.records = append(b.records, k)
	b.enforceLength()
	return true
}

func (b *Buffer) enforceLength() {
	for b.totalWidth() > b.maxLength && len(b.records) > 0 {
		b.records = b.records[1:]
	}
}

func (b *Buffer) totalWidth() int {
	total := 0
	for _, r := range b.records {
		total += columnWidth(r.Render())
	}
	return total
}

// Sweep removes records older than idleTimeout relative to now. Returns
// true if anything was removed. If the sweep empties the buffer, the
// caller is responsible for resetting modifier-state latches (I2).
func (b *Buffer) Sweep(now time.Time) bool {
	if len(b.records) == 0 {
		return false
	}
	kept := b.records[:0:0]
	for _, r := range b.records {
		if now.Sub(r.LastSeen) < b.idleTimeout {
			kept = append(kept, r)
		}
	}
	changed := len(kept) != len(b.records)
	b.records = kept
	return changed
}

// Text renders the buffer's full display string, concatenating each
// record's rendered form in order.
func (b *Buffer) Text() string {
	var sb strings.Builder
	for _, r := range b.records {
		sb.WriteString(r.Render())
	}
	return sb.String()
}

// Records exposes a read-only snapshot, primarily for tests.
func (b *Buffer) Records() []Keypress {
	out := make([]Keypress, len(b.records))
	copy(out, b.records)
	return out
}

// Clear empties the buffer unconditionally.
func (b *Buffer) Clear() { b.records = nil }

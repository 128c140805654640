// internal/common/eventloop/sequencer.go
package eventloop

import "sync/atomic"

// Token identifies one issued request. Tokens grow monotonically.
type Token uint64

// Sequencer issues request tokens and answers whether a completion still
// belongs to the most recent request. Superseded completions are dropped
// by their owner instead of cancelling the underlying call.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new token, superseding every earlier one.
func (s *Sequencer) Next() Token {
	return Token(s.latest.Add(1))
}

// IsCurrent reports whether t is the most recently issued token.
func (s *Sequencer) IsCurrent(t Token) bool {
	return t != 0 && uint64(t) == s.latest.Load()
}

// Invalidate makes every outstanding token stale without issuing a usable one.
func (s *Sequencer) Invalidate() {
	s.latest.Add(1)
}

// Latest returns the last value handed out or burned by Invalidate.
func (s *Sequencer) Latest() Token {
	return Token(s.latest.Load())
}

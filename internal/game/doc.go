// Package game implements the rules engine for Bluff (also known as Cheat).
//
// The main type is Session, which owns the players of one game, their hands,
// the face-down center pile, the turn pointer and the outstanding claim. A
// Session is a plain state machine: every method is synchronous, performs no
// I/O and must be called by a single writer. Callers that share a Session
// between goroutines serialize access themselves.
//
// # Basic Usage
//
//	s := game.NewSession("g1", randutil.New(seed))
//	s.AddPlayer("p1", "Alice")
//	s.AddPlayer("p2", "Bob")
//	events, err := s.StartGame()
//	// Alice places two cards claiming Kings
//	out, err := s.PlayCards("p1", []string{"13_hearts", "4_clubs"}, deck.King)
//	// Bob challenges the claim
//	res, err := s.CallBluff("p2")
//
// # Rules
//
//   - Claims are cumulative: every play in a round must name the same rank.
//   - Only the next player may challenge, and a challenge inspects the most
//     recent play only. The loser of a challenge collects the whole pile.
//   - Four of a non-dangerous rank in one hand are discarded. Four of the
//     dangerous rank (Aces by default) lose the game on the spot.
//   - Emptying your hand makes you the pending winner; the win is confirmed
//     when the next player plays on or challenges and is wrong.
//
// Derived consequences of a command are reported as an ordered []Event so
// transports can relay them verbatim.
//
// # Deterministic Testing
//
// Pass a seeded RNG to NewSession, or stack the deck with WithDeckSource to
// control the deal completely.
package game

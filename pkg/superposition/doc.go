// Package superposition provides a publish register: a double-slot container
// that lets a single mover keep appending to a value while any number of
// readers inspect the last published version without ever seeing a partial
// mutation.
//
// The register keeps two instances of the value. One is the front slot and is
// visible to readers. The other is the back slot and belongs to the mover.
// Publishing mutates the back slot and then flips the front index, which is
// the single linearization point. The previously published increment is
// replayed onto the demoted slot on the next publish, so both instances stay
// convergent without copying the value.
//
// # Basic Usage
//
//	reg, err := superposition.New(func() (*ledger.Ledger, error) {
//	    return ledger.New(), nil
//	})
//	if err != nil {
//	    // errors.Is(err, superposition.ErrConfiguration)
//	}
//
//	mover := reg.Mover()
//
//	// Inspect the published value to prepare the next increment.
//	var tip ledger.Tip
//	_ = mover.Stage(func(l *ledger.Ledger) error {
//	    tip = l.Tip()
//	    return nil
//	})
//
//	// Apply and publish. The mutator is retained and replayed once.
//	err = mover.Publish(ctx, func(l *ledger.Ledger) error {
//	    return l.Append(block)
//	})
//
//	reader := reg.Reader()
//	err = reader.Read(func(l *ledger.Ledger) error {
//	    return l.Verify(0)
//	})
//
// # Concurrency
//
// The register uses a single-mover, multi-reader model:
//   - [Reader.Read] is safe for concurrent use, from any number of handles
//   - Only one goroutine may drive the [Mover] side ([Mover.Stage] and
//     [Mover.Publish]). Overlapping mover calls are detected and rejected
//     with [ErrMisuse], but they are never arbitrated.
//   - Readers never block the mover except for the drain wait in
//     [Mover.Publish], which spins and then backs off until readers that
//     entered the back slot while it was still front have left.
//
// Mutators passed to [Mover.Publish] must be deterministic: replaying the same
// mutator on a copy that was equal before yields an equal result. They must
// also be all-or-nothing. Callbacks passed to [Mover.Stage] and [Reader.Read]
// must not mutate the value.
//
// # Error Handling
//
// Fatal errors ([ErrCorrupted], [ErrMisuse] caused by a mutating callback)
// poison the register: every later call returns the same error. Configuration
// errors ([ErrConfiguration]) are returned by [New] only. Errors returned by
// user callbacks from Stage and Read are passed through unchanged.
package superposition

// Package walker provides an incremental, cancelable traversal of a
// document subtree.
//
// Iterator is the pull-based core: an explicit pre-order state machine
// whose Next returns a tagged Step (Visiting, Ended or Broken). Advance
// moves one node at a time and reports filtered nodes as Skipped. It holds
// no recursion state, so a traversal can stop between any two nodes.
//
// Walker drives an Iterator in chunks on a sched.Scheduler. Each scheduler
// turn steps through nodes until the per-turn time budget (or visit cap) is spent
// and then posts its continuation, yielding to other queued work. Exactly
// one terminal notification, End or Break, is delivered per walk.
//
//	w := walker.New(loop, tree,
//	    walker.WithTimeBudget(50*time.Millisecond),
//	    walker.WithFilter(tree.IsText),
//	)
//	_ = w.Start(root, walker.Handler{
//	    Visit: func(n dom.Node) bool { collect(n); return true },
//	    End:   func() { done() },
//	    Break: func() { canceled() },
//	})
package walker

/*
Package watch keeps a target directory fed with every file that shows up in a
source tree.

	+--------------+      +-------------+
	|   fsnotify   |----->| Coordinator |
	| (recursive)  |      |   (events)  |
	+--------------+      +------+------+
	                             |
	        +--------------------+
	        |                    |
	+-------+------+     +-------+------+
	|   backlog    |     |    settle    |
	| (top level)  |     |  (per path)  |
	+-------+------+     +-------+------+
	        |                    |
	        +---------+----------+
	                  |
	          +-------+-------+
	          |   operation   |
	          |  (HandlePath) |
	          +---------------+

🎯 Purpose:
- Runs the backlog pass and the live subscription for one source directory
- Extends the subscription to every directory created under the root
- Hands every path to the transfer worker on its own goroutine

🔄 Lifecycle:
1. Starting: ledger loaded, subscription established on the whole tree
2. BackfillInProgress: top level entries dispatched, nothing awaited
3. Watching: Ready is closed, events are served until the context ends

Subscribing happens before the backlog listing, so a file created while the
coordinator starts up is seen by the listing, the subscription, or both.
Duplicates are absorbed by the ledger.

🔍 Example:

	c := watch.New(cfg, logger)
	go func() { <-c.Ready(); fmt.Println("live") }()
	err := c.Run(ctx)
*/
package watch

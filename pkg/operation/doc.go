/*
Package operation implements the transfer worker: given any path under the
source directory it copies every not-yet-transferred file into the target
directory and records it.

	+-------------+
	|  Operation  |
	| (HandlePath)|
	+------+------+
	       |
	+------+------+------+
	|             |      |
	+-----+  +----+---+  +--+----+
	|scan |  | status |  | state |
	|(dir)|  | (copy) |  |(ledger)|
	+-----+  +--------+  +-------+

🎯 Purpose:
- Turns a filesystem path into zero or more copies
- Keeps the target flat: every file lands under its base name
- Records a name only after its copy has fully landed

🔄 Flow:
1. Stat the path (missing paths fail with ErrNotFound)
2. Directories recurse over their immediate children, one at a time
3. Files matching an ignore pattern are skipped
4. Files whose base name is already in the ledger are skipped
5. Otherwise copy through status.FileManager, then ledger.Record

⚡ Key Responsibilities:
- Copy-if-absent keyed by base name
- Isolation of failures: one bad child never stops its siblings
- Collapsing concurrent work on one base name into a single copy

🔍 Example:

	w := operation.New(operation.Options{
		SourceDir: "/data/in",
		Target:    status.NewManager("/data/out"),
		Ledger:    state.Load(ctx, "transfers.json"),
		Logger:    logger,
	})
	err := w.HandlePath(ctx, "/data/in/sub")
*/
package operation

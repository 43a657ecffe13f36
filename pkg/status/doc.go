/*
Package status owns the target directory and the way file state is shown to
the user.

	            +-------------+
	            |   Status    |
	            |  (Target)   |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           |  Lines  |
	| (Target)  |           | (UI/UX) |
	+-----------+           +---------+

🎯 Purpose:
- Writes copies into the target directory without ever exposing a
  half-written file under its final name
- Names the states a source file can be in (pending, transferred, ignored)
- Formats those states for the status command

⚡ Key Responsibilities:
- Temp file + rename for every copy
- Overwriting an existing destination of the same name
- Padding and coloring status lines

🔍 Example:

	mgr := status.NewManager("/data/out")
	n, err := mgr.CopyFile(ctx, "/data/in/sub/b.txt", "b.txt")
*/
package status

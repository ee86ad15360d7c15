/*
Package operation runs the backup, patch and verify stages against the configured target.

	+----------+     +---------+     +----------+
	|  Backup  | --> |  Patch  | --> |  Verify  |
	| (status) |     |  (text) |     |  (text)  |
	+----------+     +---------+     +----------+

🎯 Purpose:
  - Refuse to touch anything when the target is missing
  - Take exactly one backup per run before reading the target
  - Apply the ordered rules to one in-memory buffer
  - Write the target only when the buffer changed
  - Report per pattern whether the old URLs are gone and the new ones present

⚡ Errors:
  - ErrTargetNotFound: nothing happened
  - ErrNoChanges: backup taken, target untouched
  - ErrVerificationFailed: an old pattern is still there
  - ErrNoBackup: nothing to restore from

All file access goes through status.FileManager, so tests run on an in-memory filesystem.

🔍 Example:

	op, err := operation.New(operation.Options{
		Config: cfg,
		Files:  status.New(afero.NewOsFs()),
	})
	res, err := op.Patch(ctx, operation.PatchOptions{})
	report, err := op.Verify(ctx)
*/
package operation

/*
Package status owns every file system access patchrc makes: reading the target,
taking and listing timestamped backups, restoring them, and writing the patched
content back atomically.

	            +-------------+
	            |   Manager   |
	            |  (afero.Fs) |
	            +------+------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+-----+             +-----+-----+
	|  Target   |             |  Backups  |
	| read/write|             | <name>.   |
	|           |             | backup_*  |
	+-----------+             +-----------+

Backups are named <target>.backup_<YYYYMMDD_HHMMSS> next to the target, keep the
target's permissions and modification time, and are never modified or deleted.
Two backups taken in the same second get a _<n> counter.

🔍 Example:

	mgr := status.New(afero.NewOsFs())
	backup, err := mgr.BackupFile(ctx, "src/services/api/dmpApi.js")
	if err != nil {
		return err
	}
	fmt.Println(backup.Path)
*/
package status

package fsutil

// Permission modes used when creating files and directories.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	DirModeDefault  = 0o755 // drwxr-xr-x
)

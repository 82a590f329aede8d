package domain

// Note is a note file read from disk, ready to be indexed.
type Note struct {
	// FilePath is the absolute path of the note.
	FilePath string

	// Title is the first level-one heading, or the file name.
	Title string

	// Content is the full note text.
	Content string

	// Size is the file size in bytes.
	Size int64

	// ModifiedAt is the modification time in epoch milliseconds.
	ModifiedAt int64
}

// Package textbuf provides a UTF-8-correct editable text buffer with
// synchronized byte and rune cursor positions. It backs the message box, the
// command prompt, and the login form fields.
package textbuf

import "unicode/utf8"

// Buffer is an editable text region. The zero value is an empty buffer with
// the cursor at position zero.
//
// Invariants: the byte offset always lands on a rune boundary of the text,
// and the rune offset always equals the number of runes before the byte
// offset. Buffer is a value type; copying one snapshots text and cursor.
type Buffer struct {
	text    string
	byteOff int
	runeOff int
}

// New returns a buffer holding s with the cursor at the end.
func New(s string) Buffer {
	return Buffer{text: s, byteOff: len(s), runeOff: utf8.RuneCountInString(s)}
}

// String returns the buffer contents.
func (b *Buffer) String() string { return b.text }

// Len returns the byte length of the contents.
func (b *Buffer) Len() int { return len(b.text) }

// ByteOffset returns the cursor position in bytes.
func (b *Buffer) ByteOffset() int { return b.byteOff }

// RuneOffset returns the cursor position in runes.
func (b *Buffer) RuneOffset() int { return b.runeOff }

// MoveLeft steps the cursor one rune left. At the start it is a no-op.
func (b *Buffer) MoveLeft() {
	if b.byteOff == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.byteOff])
	b.byteOff -= size
	b.runeOff--
}

// MoveRight steps the cursor one rune right. At the end it is a no-op.
func (b *Buffer) MoveRight() {
	if b.byteOff >= len(b.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(b.text[b.byteOff:])
	b.byteOff += size
	b.runeOff++
}

// Insert places r at the cursor and advances past it.
func (b *Buffer) Insert(r rune) {
	b.text = b.text[:b.byteOff] + string(r) + b.text[b.byteOff:]
	b.byteOff += utf8.RuneLen(r)
	b.runeOff++
}

// InsertString inserts s at the cursor and advances past it.
func (b *Buffer) InsertString(s string) {
	b.text = b.text[:b.byteOff] + s + b.text[b.byteOff:]
	b.byteOff += len(s)
	b.runeOff += utf8.RuneCountInString(s)
}

// Backspace removes the rune immediately before the cursor. At the start it
// is a no-op.
func (b *Buffer) Backspace() {
	if b.byteOff == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.byteOff])
	b.text = b.text[:b.byteOff-size] + b.text[b.byteOff:]
	b.byteOff -= size
	b.runeOff--
}

// Take empties the buffer and returns the previous contents, resetting both
// offsets to zero. Used when submitting.
func (b *Buffer) Take() string {
	s := b.text
	b.text = ""
	b.byteOff = 0
	b.runeOff = 0
	return s
}

// Set replaces the contents with s and moves the cursor to the end.
func (b *Buffer) Set(s string) {
	b.text = s
	b.byteOff = len(s)
	b.runeOff = utf8.RuneCountInString(s)
}

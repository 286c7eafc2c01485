package modes

// KeyKind discriminates Key. Printable input arrives as KindRune; everything
// the controller reacts to by name has its own kind. The UI layer translates
// terminal key messages into this transport-independent form.
type KeyKind int

const (
	KindRune KeyKind = iota
	KindEnter
	KindEsc
	KindBackspace
	KindLeft
	KindRight
	KindUp
	KindDown
	KindCtrlD
)

// Key is one key press as seen by the controller.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Rune returns a printable key.
func Rune(r rune) Key { return Key{Kind: KindRune, Rune: r} }

var (
	Enter     = Key{Kind: KindEnter}
	Esc       = Key{Kind: KindEsc}
	Backspace = Key{Kind: KindBackspace}
	Left      = Key{Kind: KindLeft}
	Right     = Key{Kind: KindRight}
	Up        = Key{Kind: KindUp}
	Down      = Key{Kind: KindDown}
	CtrlD     = Key{Kind: KindCtrlD}
)

package tile

// Load state of a tile. Ready and Failed are terminal.
type State int

const (
	Unloaded State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "UNLOADED"
	case Loading:
		return "LOADING"
	case Ready:
		return "READY"
	case Failed:
		return "FAILED"
	}
	return ""
}

func (s State) Terminal() bool {
	return s == Ready || s == Failed
}

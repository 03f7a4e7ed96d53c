package lower

import (
	"errors"
	"fmt"

	"rial/internal/source"
	"rial/internal/symbols"
)

// FatalError aborts the lowering of one unit.
type FatalError struct {
	Module string
	Pos    source.Pos
	Msg    string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Module, e.Pos, e.Msg)
}

func isNotFound(err error) bool {
	return errors.Is(err, symbols.ErrNotFound)
}

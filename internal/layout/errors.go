package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCyclicLayout  = errors.New("cyclic layout")
	ErrMissingLayout = errors.New("missing layout")
	ErrNotLayout     = errors.New("document has no layout rune")
	ErrUnknownRegion = errors.New("unknown region")
)

// CyclicLayoutError reports an extends chain that revisits itself.
type CyclicLayoutError struct {
	Dir   string
	Chain []string // keys in visiting order, ending with the repeated key
}

func (e *CyclicLayoutError) Error() string {
	return fmt.Sprintf("cyclic layout for %s: %s", e.Dir, strings.Join(e.Chain, " -> "))
}

func (e *CyclicLayoutError) Unwrap() error { return ErrCyclicLayout }

// MissingLayoutError reports an extends target that does not exist.
type MissingLayoutError struct {
	Dir string
	ID  string
}

func (e *MissingLayoutError) Error() string {
	return fmt.Sprintf("layout %q extended from %s not found", e.ID, e.Dir)
}

func (e *MissingLayoutError) Unwrap() error { return ErrMissingLayout }

// UnknownRegionError reports a page region no layout in the chain declares.
// The region content is kept under FallbackSlot.
type UnknownRegionError struct {
	Region string
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("region %q is not defined by the layout; kept under %s", e.Region, FallbackSlot)
}

func (e *UnknownRegionError) Unwrap() error { return ErrUnknownRegion }

// cacheable reports whether a resolution failure is structural and should
// be cached rather than retried.
func cacheable(err error) bool {
	return errors.Is(err, ErrCyclicLayout) || errors.Is(err, ErrMissingLayout) || errors.Is(err, ErrNotLayout)
}

package matchtpl

import (
	"strings"
	"sync"
)

// ----------------------------- Buffer pools ----------------------------------

var builderPool = sync.Pool{
	New: func() any { return &strings.Builder{} },
}

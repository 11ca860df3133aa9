package memory

import (
	"testing"

	"github.com/example/shotmark/internal/store"
	"github.com/example/shotmark/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return NewStore() })
}

package querycount

import (
	"context"
	"testing"
)

func TestCounter(t *testing.T) {
	ctx, counter := NewContext(context.Background())

	Inc(ctx)
	Inc(ctx)
	Inc(context.Background()) // no counter attached

	if counter.Value() != 2 {
		t.Errorf("expected 2, got %d", counter.Value())
	}
}

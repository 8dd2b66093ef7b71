package mapbin

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollisionClassOf(t *testing.T) {
	types := TileTypes{0: "water", 1: "heat", 2: "decor", 3: "ladder"}

	tests := []struct {
		gid  uint32
		want CollisionClass
	}{
		{0, CollisionNone},
		{FlipHorizontalFlag | FlipVerticalFlag, CollisionNone},
		{1, CollisionWater},
		{2, CollisionHeat},
		{3, CollisionNone},
		{4, CollisionSolid},
		{5, CollisionSolid},                      // unregistered
		{FlipHorizontalFlag | 1, CollisionWater}, // flags masked
		{FlipDiagonalFlag | 2, CollisionHeat},
		{RotateHex120Flag | 1, CollisionWater}, // bit 28 masked off
	}

	for _, tt := range tests {
		if got := CollisionClassOf(tt.gid, types); got != tt.want {
			t.Errorf("CollisionClassOf(%#x) = %v, want %v", tt.gid, got, tt.want)
		}
	}
}

func TestCollisionClassOfNilTypes(t *testing.T) {
	if got := CollisionClassOf(9, nil); got != CollisionSolid {
		t.Errorf("got %v, want solid", got)
	}
}

func TestEncodeCollisionPacking(t *testing.T) {
	types := TileTypes{0: "water", 1: "heat"}

	// classes: 1,2,3,0 | 2
	gids := []uint32{7, 1, 2, 0, 1}
	got, err := EncodeCollision(gids, types)
	if err != nil {
		t.Fatalf("EncodeCollision: %v", err)
	}
	want := []byte{1 | 2<<2 | 3<<4, 2, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("packed bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCollisionLength(t *testing.T) {
	for n := 1; n <= 40; n++ {
		gids := make([]uint32, n)
		for i := range gids {
			gids[i] = uint32(i % 3)
		}
		got, err := EncodeCollision(gids, nil)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		want := ((n+3)/4 + 3) / 4 * 4
		if len(got) != want {
			t.Errorf("n=%d: len = %d, want %d", n, len(got), want)
		}
	}
}

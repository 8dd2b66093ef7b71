package mapbin

import "fmt"

// CollisionClass is the 2-bit tile category used by the runtime physics pass.
type CollisionClass uint8

const (
	CollisionNone  CollisionClass = 0 // empty or decor
	CollisionSolid CollisionClass = 1
	CollisionWater CollisionClass = 2
	CollisionHeat  CollisionClass = 3
)

const collisionIDMask uint32 = 0x0FFFFFFF

func (c CollisionClass) String() string {
	switch c {
	case CollisionNone:
		return "none"
	case CollisionSolid:
		return "solid"
	case CollisionWater:
		return "water"
	case CollisionHeat:
		return "heat"
	default:
		return fmt.Sprintf("CollisionClass(%d)", uint8(c))
	}
}

// CollisionClassOf classifies a GID by the tileset type of its tile.
// Tileset ids are zero-based, so tile index t looks up t-1.
func CollisionClassOf(gid uint32, types TileTypes) CollisionClass {
	tid := gid & collisionIDMask
	if tid == 0 {
		return CollisionNone
	}
	typ, _ := types.Lookup(tid - 1)
	switch typ {
	case "water":
		return CollisionWater
	case "heat":
		return CollisionHeat
	case "decor":
		return CollisionNone
	default:
		return CollisionSolid
	}
}

// EncodeCollision packs four classes per byte, first tile in the low bits,
// and pads the result to a multiple of 4 bytes.
func EncodeCollision(gids []uint32, types TileTypes) ([]byte, error) {
	out := make([]byte, 0, align((len(gids)+3)/4, 4))
	var acc byte
	for i, gid := range gids {
		class := CollisionClassOf(gid, types)
		if class > CollisionHeat {
			return nil, fmt.Errorf("%w: collision class %d at tile %d exceeds 2 bits", ErrRange, class, i)
		}
		acc |= byte(class) << ((i % 4) * 2)
		if i%4 == 3 {
			out = append(out, acc)
			acc = 0
		}
	}
	if len(gids)%4 != 0 {
		out = append(out, acc)
	}
	return padTo(out, 4), nil
}

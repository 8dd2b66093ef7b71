package leveldata

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/automoto/mapc/mapbin"
	"github.com/google/go-cmp/cmp"
)

const testTileset = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" tiledversion="1.10.2" name="tiles" tilewidth="8" tileheight="8" tilecount="4" columns="4">
 <image source="tiles.png" width="32" height="8"/>
 <tile id="0" type="water"/>
 <tile id="1" type="heat"/>
 <tile id="3" class="decor"/>
</tileset>
`

func testTMX(data, objects string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="8" tileheight="8" infinite="0">
 <tileset firstgid="1" source="tileset.tsx"/>
 <layer id="1" name="Tiles" width="2" height="2">
  ` + data + `
 </layer>
` + objects + `
</map>
`
}

func TestLoadRoom(t *testing.T) {
	objects := `<objectgroup id="2" name="Objects">
  <object id="1" name="door" type="entity" x="8" y="16" width="8" height="16">
   <properties>
    <property name="target" value="room02"/>
    <property name="delay" type="float" value="0.5"/>
    <property name="id" type="int" value="3"/>
   </properties>
  </object>
  <object id="2" name="cam" type="camera" x="0" y="0" width="240" height="160"/>
 </objectgroup>`
	gids := mapbin.EncodeGrid([]uint32{0, 1, 0, 0})
	fsys := fstest.MapFS{
		"rooms/room01.tmx": {Data: []byte(testTMX(`<data encoding="base64">
   `+gids+`
  </data>`, objects))},
	}

	room, err := LoadRoom(fsys, "rooms/room01.tmx")
	if err != nil {
		t.Fatalf("LoadRoom: %v", err)
	}
	if room.Name != "room01" {
		t.Errorf("Name = %q, want room01", room.Name)
	}
	if room.Layer.Width != 2 || room.Layer.Height != 2 || room.Layer.Encoding != "base64" {
		t.Errorf("layer = %+v", room.Layer)
	}

	got, err := mapbin.DecodeGrid(room.Layer)
	if err != nil {
		t.Fatalf("DecodeGrid: %v", err)
	}
	if diff := cmp.Diff([]uint32{0, 1, 0, 0}, got); diff != "" {
		t.Errorf("gids mismatch (-want +got):\n%s", diff)
	}

	want := &mapbin.ObjectGroup{Objects: []mapbin.Object{
		{Kind: "entity", Name: "door", X: 8, Y: 16, Width: 8, Height: 16, Properties: []mapbin.Property{
			{Name: "target", Value: "room02"},
			{Name: "delay", Type: "float", Value: "0.5"},
			{Name: "id", Type: "int", Value: "3"},
		}},
		{Kind: "camera", Name: "cam", Width: 240, Height: 160},
	}}
	if diff := cmp.Diff(want, room.ObjectGroup); diff != "" {
		t.Errorf("object group mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRoomWithoutObjectGroup(t *testing.T) {
	fsys := fstest.MapFS{
		"r.tmx": {Data: []byte(testTMX(`<data encoding="base64">AAAAAAAAAAAAAAAAAAAAAA==</data>`, ""))},
	}
	room, err := LoadRoom(fsys, "r.tmx")
	if err != nil {
		t.Fatalf("LoadRoom: %v", err)
	}
	if room.ObjectGroup != nil {
		t.Errorf("ObjectGroup = %+v, want nil", room.ObjectGroup)
	}
}

func TestLoadRoomKeepsDeclaredEncoding(t *testing.T) {
	fsys := fstest.MapFS{
		"r.tmx": {Data: []byte(testTMX(`<data encoding="csv">0,1,0,0</data>`, ""))},
	}
	room, err := LoadRoom(fsys, "r.tmx")
	if err != nil {
		t.Fatalf("LoadRoom: %v", err)
	}
	if room.Layer.Encoding != "csv" || room.Layer.Data != "0,1,0,0" {
		t.Errorf("layer = %+v, want csv payload passed through", room.Layer)
	}
	if _, err := mapbin.DecodeGrid(room.Layer); !errors.Is(err, mapbin.ErrFormat) {
		t.Errorf("DecodeGrid err = %v, want format error", err)
	}
}

func TestLoadRoomErrors(t *testing.T) {
	tests := []struct {
		name string
		tmx  string
	}{
		{"no layer", `<map version="1.10"><objectgroup id="1"/></map>`},
		{"no data", `<map><layer id="1" name="Tiles" width="2" height="2"></layer></map>`},
		{"compressed", testTMX(`<data encoding="base64" compression="zlib">eJxjYGBgAAAABAAB</data>`, "")},
		{"not xml", `{"layers": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{"r.tmx": {Data: []byte(tt.tmx)}}
			_, err := LoadRoom(fsys, "r.tmx")
			if !errors.Is(err, mapbin.ErrFormat) {
				t.Errorf("err = %v, want format error", err)
			}
		})
	}
}

func TestLoadRoomMissingFile(t *testing.T) {
	if _, err := LoadRoom(fstest.MapFS{}, "nope.tmx"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadTileTypes(t *testing.T) {
	fsys := fstest.MapFS{"rooms/tileset.tsx": {Data: []byte(testTileset)}}

	types, err := LoadTileTypes(fsys, TilesetPath("rooms/room01.tmx", DefaultTileset))
	if err != nil {
		t.Fatalf("LoadTileTypes: %v", err)
	}
	want := mapbin.TileTypes{0: "water", 1: "heat", 3: "decor"}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverRooms(t *testing.T) {
	fsys := fstest.MapFS{
		"rooms/b01.tmx":       {Data: []byte("x")},
		"rooms/a02.tmx":       {Data: []byte("x")},
		"rooms/tileset.tsx":   {Data: []byte("x")},
		"rooms/notes.txt":     {Data: []byte("x")},
		"rooms/sub/inner.tmx": {Data: []byte("x")},
	}
	got, err := DiscoverRooms(fsys, "rooms")
	if err != nil {
		t.Fatalf("DiscoverRooms: %v", err)
	}
	if diff := cmp.Diff([]string{"rooms/a02.tmx", "rooms/b01.tmx"}, got); diff != "" {
		t.Errorf("rooms mismatch (-want +got):\n%s", diff)
	}

	if _, err := DiscoverRooms(fsys, "empty"); err == nil {
		t.Error("expected an error for a directory without rooms")
	}
}

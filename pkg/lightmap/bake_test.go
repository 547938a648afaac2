package lightmap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/lightbake/pkg/math3d"
	"github.com/taigrr/lightbake/pkg/scene"
)

func newTestBaker(t *testing.T) *Baker {
	t.Helper()
	return NewBaker(newTestComposer(t), nil)
}

func TestBakeGroundHemisphericSaturates(t *testing.T) {
	b := newTestBaker(t)
	lights := []scene.Light{scene.NewHemisphericLight("sky", math3d.Up(), 1)}

	grid, stats, err := b.BakeGrid(scene.Ground("ground", 10, 10), lights, QualityLow.GridSize())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Triangles)
	assert.Equal(t, 2, stats.Rasterized)
	assert.Equal(t, 2, stats.Synthesized)
	assert.Zero(t, stats.Skipped())

	for y := range grid.Size {
		for x := range grid.Size {
			r, g, bl := grid.At(x, y)
			if r != 255 || g != 255 || bl != 255 {
				t.Fatalf("cell %d,%d = %v,%v,%v, want 255", x, y, r, g, bl)
			}
		}
	}
}

func TestBakeAmbientFloor(t *testing.T) {
	b := newTestBaker(t)

	grid, _, err := b.BakeGrid(scene.Ground("ground", 10, 10), nil, 32)
	require.NoError(t, err)

	img := grid.Image()
	for y := range grid.Size {
		for x := range grid.Size {
			r, _, _ := grid.At(x, y)
			assert.InDelta(t, 25.5, r, 1e-9)
			px := img.RGBAAt(x, y)
			assert.True(t, px.R >= 25 && px.R <= 26, "cell %d,%d = %d", x, y, px.R)
		}
	}
}

func TestBakeChannelBounds(t *testing.T) {
	b := newTestBaker(t)
	room := scene.DefaultRoom()
	room.AddLight(scene.NewDirectionalLight("sun", math3d.V3(0.2, -1, 0.4), 3))

	for _, m := range room.Meshes {
		grid, _, err := b.BakeGrid(m, room.Lights, 64)
		require.NoError(t, err, m.Name)
		for i, v := range grid.Data {
			if v == 0 {
				continue // never written
			}
			if v < AmbientFloor*255-1e-9 || v > 255 {
				t.Fatalf("%s: data[%d] = %v out of range", m.Name, i, v)
			}
		}
	}
}

func TestBakeIsDeterministic(t *testing.T) {
	b := newTestBaker(t)
	room := scene.DefaultRoom()

	for _, m := range room.Meshes {
		first, _, err := b.BakeGrid(m, room.Lights, 128)
		require.NoError(t, err)
		second, _, err := b.BakeGrid(m, room.Lights, 128)
		require.NoError(t, err)
		assert.True(t, first.Equal(second), m.Name)
	}
}

func TestBakeDisabledPointLightMatchesNoLight(t *testing.T) {
	b := newTestBaker(t)
	p := scene.NewPointLight("light", math3d.V3(0, 2, 0), 50)
	p.Enabled = false

	for _, m := range scene.DefaultRoom().Meshes {
		lit, _, err := b.BakeGrid(m, []scene.Light{p}, 64)
		require.NoError(t, err)
		dark, _, err := b.BakeGrid(m, nil, 64)
		require.NoError(t, err)
		assert.True(t, lit.Equal(dark), m.Name)
	}
}

func TestBakeUsesProvidedUVs(t *testing.T) {
	b := newTestBaker(t)
	m := scene.Ground("ground", 10, 10)
	// Squeeze the whole quad into the lower-left quarter.
	m.UVs = []math3d.Vec2{{X: 0, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: 0}, {X: 0, Y: 0}}

	grid, stats, err := b.BakeGrid(m, nil, 16)
	require.NoError(t, err)
	assert.Zero(t, stats.Synthesized)
	assert.True(t, grid.Covered(8, 8))
	assert.False(t, grid.Covered(9, 9))
	assert.False(t, grid.Covered(15, 0))
}

func TestBakeSynthesizesWhenUVsTooShort(t *testing.T) {
	b := newTestBaker(t)
	m := scene.Ground("ground", 10, 10)
	m.UVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 0, Y: 0}}

	grid, stats, err := b.BakeGrid(m, nil, 16)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Synthesized)
	assert.True(t, grid.Covered(15, 15))
}

func TestBakeSkipsDegenerateTriangles(t *testing.T) {
	b := newTestBaker(t)
	m := scene.Ground("ground", 10, 10)
	// A sliver with one collapsed edge and one with cancelling normals.
	m.Positions = append(m.Positions, math3d.V3(0, 0, 0), math3d.V3(0, 0, 0))
	m.Normals = append(m.Normals, math3d.V3(0, -1, 0), math3d.Zero3())
	m.Indices = append(m.Indices, 0, 4, 4, 0, 4, 5)

	_, stats, err := b.BakeGrid(m, nil, 16)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Triangles)
	assert.Equal(t, 2, stats.Rasterized)
	assert.Equal(t, 1, stats.Degenerate)
	assert.Equal(t, 1, stats.BadNormals)
}

func TestBakeMeshMissingNormals(t *testing.T) {
	b := newTestBaker(t)
	m := scene.Box("box", 1, 1, 1)
	m.Normals = nil

	tex, _, err := b.BakeMesh(m, nil, QualityLow)
	require.Error(t, err)
	var ge *GeometryError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "box", ge.Mesh)
	assert.ErrorIs(t, err, ErrMissingGeometry)
	assert.True(t, tex.Placeholder)
	assert.Equal(t, 256, tex.Size)
}

func TestBakeMeshTexture(t *testing.T) {
	b := newTestBaker(t)

	tex, stats, err := b.BakeMesh(scene.Box("box", 1, 1, 1), scene.DefaultRoom().Lights, QualityMedium)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Triangles)
	assert.Equal(t, 512, tex.Image.Bounds().Dx())
	assert.Equal(t, "box", tex.Name)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *scene.Mesh)
		want   error
	}{
		{"ok", func(*scene.Mesh) {}, nil},
		{"no positions", func(m *scene.Mesh) { m.Positions = nil }, ErrMissingGeometry},
		{"no normals", func(m *scene.Mesh) { m.Normals = nil }, ErrMissingGeometry},
		{"no indices", func(m *scene.Mesh) { m.Indices = nil }, ErrMissingGeometry},
		{"index past end", func(m *scene.Mesh) { m.Indices[4] = 99 }, ErrIndexOutOfRange},
		{"negative index", func(m *scene.Mesh) { m.Indices[0] = -1 }, ErrIndexOutOfRange},
		{"short normals", func(m *scene.Mesh) { m.Normals = m.Normals[:2] }, ErrIndexOutOfRange},
		{"trailing partial triple", func(m *scene.Mesh) { m.Indices = append(m.Indices, 99) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := scene.Ground("ground", 2, 2)
			tt.mutate(m)
			g, err := Extract(m)
			if tt.want == nil {
				require.NoError(t, err)
				assert.Equal(t, 2, g.TriangleCount())
				assert.Equal(t, scene.CategoryGround, g.Category)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTrianglesStopsEarly(t *testing.T) {
	g, err := Extract(scene.Box("box", 1, 1, 1))
	require.NoError(t, err)

	n := 0
	for range g.Triangles() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

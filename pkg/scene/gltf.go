package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/taigrr/lightbake/pkg/math3d"
)

// ErrNoMeshes is returned when a glTF document contains no drawable nodes.
var ErrNoMeshes = errors.New("gltf: document has no mesh nodes")

// GLTFLoader loads glTF/GLB documents into scene meshes, one mesh per node
// that references a glTF mesh.
type GLTFLoader struct {
	// DefaultLights adds the default room lights when true; glTF
	// documents rarely carry lights a bake can use.
	DefaultLights bool
}

// NewGLTFLoader creates a loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{DefaultLights: true}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Scene, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens path and converts its default scene.
func (l *GLTFLoader) Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	s, err := l.Convert(doc)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Convert builds a Scene from an already decoded document.
func (l *GLTFLoader) Convert(doc *gltf.Document) (*Scene, error) {
	s := New()
	if l.DefaultLights {
		def := DefaultRoom()
		s.AddLight(def.Lights...)
	}

	for _, root := range rootNodes(doc) {
		if err := l.walk(doc, root, math3d.Identity(), s); err != nil {
			return nil, err
		}
	}
	if len(s.Meshes) == 0 {
		return nil, ErrNoMeshes
	}
	return s, nil
}

// rootNodes returns the root node indices of the default scene, falling
// back to every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *GLTFLoader) walk(doc *gltf.Document, idx int, parent math3d.Mat4, s *Scene) error {
	if idx < 0 || idx >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	}
	node := doc.Nodes[idx]
	world := parent.Mul(nodeTransform(node))

	if node.Mesh != nil {
		mesh, err := l.convertMesh(doc, *node.Mesh, meshName(doc, node, idx))
		if err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
		mesh.World = world
		s.AddMesh(mesh)
	}

	for _, c := range node.Children {
		if err := l.walk(doc, c, world, s); err != nil {
			return err
		}
	}
	return nil
}

func meshName(doc *gltf.Document, node *gltf.Node, idx int) string {
	if node.Name != "" {
		return node.Name
	}
	if i := *node.Mesh; i >= 0 && i < len(doc.Meshes) && doc.Meshes[i].Name != "" {
		return doc.Meshes[i].Name
	}
	return fmt.Sprintf("mesh-%d", idx)
}

// nodeTransform returns the local matrix of a node, preferring an explicit
// matrix over TRS components.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	var zero [16]float64
	if n.Matrix != zero && n.Matrix != [16]float64(math3d.Identity()) {
		return math3d.Mat4(n.Matrix)
	}

	t := n.Translation
	r := n.Rotation
	sc := n.Scale
	if sc == [3]float64{} {
		sc = [3]float64{1, 1, 1}
	}

	rot := mgl64.Ident4()
	if r != [4]float64{} {
		q := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}
		rot = q.Normalize().Mat4()
	}
	m := mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rot).
		Mul4(mgl64.Scale3D(sc[0], sc[1], sc[2]))
	return math3d.Mat4(m)
}

// convertMesh merges every triangle primitive of a glTF mesh into one
// scene mesh. An attribute missing from any primitive is left absent on
// the result so the bake can report it.
func (l *GLTFLoader) convertMesh(doc *gltf.Document, meshIdx int, name string) (*Mesh, error) {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	src := doc.Meshes[meshIdx]
	mesh := NewMesh(name)
	hasNormals, hasUVs := true, true

	for _, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, normIdx); err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		}
		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, uvIdx); err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}
		hasNormals = hasNormals && len(normals) == len(positions)
		hasUVs = hasUVs && len(uvs) == len(positions)

		base := len(mesh.Positions)
		mesh.Positions = append(mesh.Positions, positions...)
		mesh.Normals = append(mesh.Normals, normals...)
		mesh.UVs = append(mesh.UVs, uvs...)

		if prim.Indices != nil {
			indices, err := readIndices(doc, *prim.Indices)
			if err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
			for _, i := range indices[:len(indices)/3*3] {
				mesh.Indices = append(mesh.Indices, base+i)
			}
		} else {
			for i := 0; i+2 < len(positions); i += 3 {
				mesh.Indices = append(mesh.Indices, base+i, base+i+1, base+i+2)
			}
		}
	}

	if !hasNormals {
		mesh.Normals = nil
	}
	if !hasUVs {
		mesh.UVs = nil
	}
	return mesh, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	acc, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorVec3, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, acc.Count)
	for i := range acc.Count {
		b := data[i*stride:]
		out[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	acc, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorVec2, 8)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, acc.Count)
	for i := range acc.Count {
		b := data[i*stride:]
		out[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return out, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	var size int
	if accessorIdx >= 0 && accessorIdx < len(doc.Accessors) {
		switch doc.Accessors[accessorIdx].ComponentType {
		case gltf.ComponentUbyte:
			size = 1
		case gltf.ComponentUshort:
			size = 2
		case gltf.ComponentUint:
			size = 4
		default:
			return nil, fmt.Errorf("unexpected index component type %v", doc.Accessors[accessorIdx].ComponentType)
		}
	}
	acc, data, stride, err := accessorBytes(doc, accessorIdx, gltf.AccessorScalar, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, acc.Count)
	for i := range acc.Count {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}

// accessorBytes validates an accessor and returns the bytes starting at
// its first element together with the element stride.
func accessorBytes(doc *gltf.Document, idx int, typ gltf.AccessorType, elemSize int) (*gltf.Accessor, []byte, int, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor %d out of range", idx)
	}
	acc := doc.Accessors[idx]
	if acc.Type != typ {
		return nil, nil, 0, fmt.Errorf("accessor %d: expected %v, got %v", idx, typ, acc.Type)
	}
	if acc.Type != gltf.AccessorScalar && acc.ComponentType != gltf.ComponentFloat {
		return nil, nil, 0, fmt.Errorf("accessor %d: unsupported component type %v", idx, acc.ComponentType)
	}
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no buffer view", idx)
	}

	view := doc.BufferViews[*acc.BufferView]
	buffer := doc.Buffers[view.Buffer]
	if buffer.Data == nil {
		return nil, nil, 0, fmt.Errorf("buffer %d (%q) has no data", view.Buffer, buffer.URI)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + acc.ByteOffset
	end := start
	if acc.Count > 0 {
		end = start + (acc.Count-1)*stride + elemSize
	}
	if end > len(buffer.Data) {
		return nil, nil, 0, fmt.Errorf("accessor %d reads past end of buffer", idx)
	}
	return acc, buffer.Data[start:end], stride, nil
}

func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

package scene

import (
	"render-demos/core"
	"render-demos/math"
)

// AABB is an axis-aligned bounding box in mesh-local space.
type AABB struct {
	Min, Max math.Vec3
}

// Mesh holds CPU-side vertex/index data. Meshes are created once at startup
// and shared by reference between draw items.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	Bounds   AABB

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	// Do not access directly; use the renderer's API.
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space bounds.
// A nil index slice draws the vertices as an unindexed triangle list.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	if indices == nil {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		m.Bounds = computeBounds(vertices)
	}
	return m
}

func computeBounds(vertices []core.Vertex) AABB {
	min := vertices[0].Position
	max := vertices[0].Position
	for _, v := range vertices[1:] {
		p := v.Position
		min = math.Vec3{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = math.Vec3{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return AABB{Min: min, Max: max}
}

// MaterialOrDefault never returns nil.
func (m *Mesh) MaterialOrDefault() *Material {
	if m.Material == nil {
		return DefaultMaterial()
	}
	return m.Material
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// CreateQuad is a unit quad in the XY plane facing +Z.
func CreateQuad() *Mesh {
	n := math.Vec3{X: 0, Y: 0, Z: 1}
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -0.5, Y: -0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 0, Y: 0}},
		{Position: math.Vec3{X: 0.5, Y: -0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 1, Y: 0}},
		{Position: math.Vec3{X: 0.5, Y: 0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{X: -0.5, Y: 0.5, Z: 0}, Normal: n, UV: math.Vec2{X: 0, Y: 1}},
	}
	indices := []uint32{0, 1, 2, 2, 3, 0}
	return CreateMeshFromData("Quad", vertices, indices)
}

// CreateCube is an axis-aligned cube centred on the origin with outward normals.
func CreateCube(size float32) *Mesh {
	s := size / 2

	type face struct {
		normal, u, v math.Vec3
	}
	faces := []face{
		{normal: math.Vec3{Z: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Y: 1}},
		{normal: math.Vec3{Z: -1}, u: math.Vec3{X: -1}, v: math.Vec3{Y: 1}},
		{normal: math.Vec3{Y: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: -1}},
		{normal: math.Vec3{Y: -1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: 1}},
		{normal: math.Vec3{X: 1}, u: math.Vec3{Z: -1}, v: math.Vec3{Y: 1}},
		{normal: math.Vec3{X: -1}, u: math.Vec3{Z: 1}, v: math.Vec3{Y: 1}},
	}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(s)
			vertices = append(vertices, core.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       math.Vec2{X: (c[0] + 1) / 2, Y: (c[1] + 1) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	return CreateMeshFromData("Cube", vertices, indices)
}

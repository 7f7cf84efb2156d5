package scene

import "render-demos/math"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo is positive on the inside.
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts normalised planes from a view-projection matrix.
// With row vectors clip_j = [p,1]·column j, so the Gribb/Hartmann rows are
// the columns of vp.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(j int) [4]float32 {
		return [4]float32{vp[0][j], vp[1][j], vp[2][j], vp[3][j]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = planeOf(c3, c0, 1)
	f.Planes[1] = planeOf(c3, c0, -1)
	f.Planes[2] = planeOf(c3, c1, 1)
	f.Planes[3] = planeOf(c3, c1, -1)
	f.Planes[4] = planeOf(c3, c2, 1)
	f.Planes[5] = planeOf(c3, c2, -1)
	return f
}

func planeOf(w, axis [4]float32, sign float32) Plane {
	a := w[0] + sign*axis[0]
	b := w[1] + sign*axis[1]
	c := w[2] + sign*axis[2]
	d := w[3] + sign*axis[3]
	n := math.Vec3{X: a, Y: b, Z: c}
	l := n.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: d / l}
}

// IntersectsFrustum is false only when the box lies entirely outside one
// plane. It can keep boxes that are outside near a frustum corner.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		pv := box.Max
		if p.Normal.X < 0 {
			pv.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			pv.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			pv.Z = box.Min.Z
		}
		if p.DistanceTo(pv) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world-space box enclosing the 8 transformed corners.
func (box AABB) Transform(m math.Mat4) AABB {
	mn, mx := box.Min, box.Max
	corners := [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	first := m.MulVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := m.MulVec3(c)
		out.Min = math.Vec3{X: math.Min(out.Min.X, p.X), Y: math.Min(out.Min.Y, p.Y), Z: math.Min(out.Min.Z, p.Z)}
		out.Max = math.Vec3{X: math.Max(out.Max.X, p.X), Y: math.Max(out.Max.Y, p.Y), Z: math.Max(out.Max.Z, p.Z)}
	}
	return out
}

// CullItems drops items whose world bounds miss the frustum. Empty meshes
// are dropped too. The input slice is not modified.
func CullItems(items []DrawItem, viewProj math.Mat4) []DrawItem {
	f := FrustumFromVP(viewProj)
	out := make([]DrawItem, 0, len(items))
	for _, it := range items {
		if it.Mesh == nil || len(it.Mesh.Vertices) == 0 {
			continue
		}
		if it.Mesh.Bounds.Transform(it.Model).IntersectsFrustum(&f) {
			out = append(out, it)
		}
	}
	return out
}

package soft

import (
	"render-demos/math"
	"render-demos/renderer"
	"render-demos/scene"
)

// clipVertex carries everything interpolated across a triangle.
type clipVertex struct {
	clip   math.Vec4
	view   math.Vec3
	normal math.Vec3
	uv     math.Vec2
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		view:   a.view.Add(b.view.Sub(a.view).Mul(t)),
		normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
		uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
	}
}

// clipNear keeps the part of the polygon with z >= -w (Sutherland-Hodgman
// against the GL near plane). Result is appended to out.
func clipNear(poly []clipVertex, out []clipVertex) []clipVertex {
	dist := func(v clipVertex) float32 { return v.clip.Z + v.clip.W }
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out
}

// screenVertex is a vertex after the perspective divide and viewport mapping.
// Attributes are pre-divided by w for perspective-correct interpolation.
type screenVertex struct {
	x, y, depth float32
	invW        float32
	view        math.Vec3
	normal      math.Vec3
	uv          math.Vec2
}

// setupTriangle is one screen-space triangle ready for rasterising.
type setupTriangle struct {
	v          [3]screenVertex
	minX, maxX int
	minY, maxY int
	invArea    float32
	material   *scene.Material
}

func toScreen(v clipVertex, width, height int) screenVertex {
	iw := 1 / v.clip.W
	return screenVertex{
		x:      (v.clip.X*iw*0.5 + 0.5) * float32(width),
		y:      (v.clip.Y*iw*0.5 + 0.5) * float32(height),
		depth:  v.clip.Z*iw*0.5 + 0.5,
		invW:   iw,
		view:   v.view.Mul(iw),
		normal: v.normal.Mul(iw),
		uv:     v.uv.Mul(iw),
	}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// setup transforms every draw item into screen-space triangles. Both
// windings are kept.
func setup(items []scene.DrawItem, view, proj math.Mat4, width, height int) []setupTriangle {
	var tris []setupTriangle
	var poly, clipped []clipVertex

	for _, item := range items {
		mesh := item.Mesh
		if mesh == nil || len(mesh.Indices) < 3 {
			continue
		}
		modelView := item.Model.Mul(view)
		normalMat := modelView.NormalMatrix()
		mat := mesh.MaterialOrDefault()

		verts := make([]clipVertex, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			p := modelView.MulVec3(v.Position)
			n := normalMat.MulDir(v.Normal)
			if item.InvertNormals {
				n = n.Negate()
			}
			verts[i] = clipVertex{
				clip:   p.ToVec4(1).MulMat(proj),
				view:   p,
				normal: n,
				uv:     v.UV,
			}
		}

		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			poly = append(poly[:0],
				verts[mesh.Indices[i]], verts[mesh.Indices[i+1]], verts[mesh.Indices[i+2]])
			clipped = clipNear(poly, clipped[:0])
			for k := 1; k+1 < len(clipped); k++ {
				t, ok := newTriangle(clipped[0], clipped[k], clipped[k+1], width, height)
				if !ok {
					continue
				}
				t.material = mat
				tris = append(tris, t)
			}
		}
	}
	return tris
}

func newTriangle(a, b, c clipVertex, width, height int) (setupTriangle, bool) {
	var t setupTriangle
	t.v = [3]screenVertex{toScreen(a, width, height), toScreen(b, width, height), toScreen(c, width, height)}
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]

	area := edge(v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
	if area == 0 || area != area {
		return t, false
	}
	t.invArea = 1 / area

	minX := math.Min(v0.x, math.Min(v1.x, v2.x))
	maxX := math.Max(v0.x, math.Max(v1.x, v2.x))
	minY := math.Min(v0.y, math.Min(v1.y, v2.y))
	maxY := math.Max(v0.y, math.Max(v1.y, v2.y))
	if maxX < 0 || maxY < 0 || minX >= float32(width) || minY >= float32(height) {
		return t, false
	}
	t.minX = max(int(minX), 0)
	t.maxX = min(int(maxX)+1, width-1)
	t.minY = max(int(minY), 0)
	t.maxY = min(int(maxY)+1, height-1)
	return t, true
}

// rasterize draws the rows [y0, y1) of every triangle into the geometry
// buffer with a less-than depth test.
func rasterize(tris []setupTriangle, gb *Target, y0, y1 int) {
	width := gb.Width()
	pos := gb.Attachment(renderer.AttachmentPosition)
	nrm := gb.Attachment(renderer.AttachmentNormal)
	alb := gb.Attachment(renderer.AttachmentAlbedo)

	for ti := range tris {
		t := &tris[ti]
		if t.maxY < y0 || t.minY >= y1 {
			continue
		}
		v0, v1, v2 := &t.v[0], &t.v[1], &t.v[2]
		ys, ye := max(t.minY, y0), min(t.maxY, y1-1)

		for y := ys; y <= ye; y++ {
			py := float32(y) + 0.5
			for x := t.minX; x <= t.maxX; x++ {
				px := float32(x) + 0.5

				// Normalised barycentrics; the sign of the area cancels so
				// both windings come out non-negative inside.
				l0 := edge(v1.x, v1.y, v2.x, v2.y, px, py) * t.invArea
				l1 := edge(v2.x, v2.y, v0.x, v0.y, px, py) * t.invArea
				l2 := edge(v0.x, v0.y, v1.x, v1.y, px, py) * t.invArea
				if l0 < 0 || l1 < 0 || l2 < 0 {
					continue
				}

				depth := l0*v0.depth + l1*v1.depth + l2*v2.depth
				di := y*width + x
				if depth < 0 || depth >= gb.Depth[di] {
					continue
				}
				gb.Depth[di] = depth

				w := 1 / (l0*v0.invW + l1*v1.invW + l2*v2.invW)
				p := v0.view.Mul(l0).Add(v1.view.Mul(l1)).Add(v2.view.Mul(l2)).Mul(w)
				n := v0.normal.Mul(l0).Add(v1.normal.Mul(l1)).Add(v2.normal.Mul(l2)).Normalize()
				uv := v0.uv.Mul(l0).Add(v1.uv.Mul(l1)).Add(v2.uv.Mul(l2)).Mul(w)
				c := t.material.AlbedoAt(uv)

				pos.Store(x, y, [4]float32{p.X, p.Y, p.Z, 1})
				nrm.Store(x, y, [4]float32{n.X, n.Y, n.Z, 0})
				alb.Store(x, y, [4]float32{c.R, c.G, c.B, c.A})
			}
		}
	}
}

package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"render-demos/core"
	remath "render-demos/math"
)

// LoadOBJ reads a Wavefront .obj file into one mesh per "o"/"g" group.
// Polygons are fan-triangulated, missing normals are generated and materials
// come from the referenced .mtl files.
func LoadOBJ(path string) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	defer f.Close()

	r := newOBJReader(filepath.Dir(path))
	if err := r.read(f); err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	if len(r.meshes) == 0 {
		return nil, &AssetLoadError{Path: path, Err: errors.New("no geometry found")}
	}
	return r.meshes, nil
}

type objRef struct{ v, vt, vn int }

// objGroup collects the deduplicated vertices of one group while faces stream in.
type objGroup struct {
	name     string
	material string
	lookup   map[objRef]uint32
	vertices []core.Vertex
	indices  []uint32
	normals  bool
}

func newOBJGroup(name, material string) *objGroup {
	return &objGroup{name: name, material: material, lookup: map[objRef]uint32{}}
}

type objReader struct {
	dir       string
	positions []remath.Vec3
	normals   []remath.Vec3
	uvs       []remath.Vec2
	materials map[string]*Material
	textures  *TextureCache

	group  *objGroup
	meshes []*Mesh
}

func newOBJReader(dir string) *objReader {
	return &objReader{
		dir:       dir,
		materials: map[string]*Material{},
		textures:  NewTextureCache(),
		group:     newOBJGroup("default", ""),
	}
}

func (r *objReader) read(src io.Reader) error {
	sc := bufio.NewScanner(src)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := r.directive(fields); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan obj: %w", err)
	}
	r.flush()
	return nil
}

func (r *objReader) directive(fields []string) error {
	args := fields[1:]
	switch fields[0] {
	case "v":
		p, err := parseVec3(args)
		if err != nil {
			return err
		}
		r.positions = append(r.positions, p)
	case "vn":
		n, err := parseVec3(args)
		if err != nil {
			return err
		}
		r.normals = append(r.normals, n)
	case "vt":
		uv, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		// Image rows are stored top first.
		r.uvs = append(r.uvs, remath.Vec2{X: uv[0], Y: 1 - uv[1]})
	case "o", "g":
		r.flush()
		name := "default"
		if len(args) > 0 {
			name = args[0]
		}
		r.group = newOBJGroup(name, r.group.material)
	case "usemtl":
		if len(args) > 0 {
			r.group.material = args[0]
		}
	case "mtllib":
		for _, name := range args {
			mats, err := loadMTL(filepath.Join(r.dir, name), r.dir, r.textures)
			if err != nil {
				continue
			}
			for k, m := range mats {
				r.materials[k] = m
			}
		}
	case "f":
		return r.face(args)
	}
	return nil
}

func (r *objReader) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face with %d vertices", len(args))
	}
	idx := make([]uint32, len(args))
	for i, tok := range args {
		ref, err := r.parseRef(tok)
		if err != nil {
			return err
		}
		idx[i] = r.vertex(ref)
	}
	g := r.group
	for i := 1; i+1 < len(idx); i++ {
		g.indices = append(g.indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

func (r *objReader) vertex(ref objRef) uint32 {
	g := r.group
	if i, ok := g.lookup[ref]; ok {
		return i
	}
	v := core.Vertex{Position: r.positions[ref.v], Normal: remath.Vec3Up}
	if ref.vt >= 0 {
		v.UV = r.uvs[ref.vt]
	}
	if ref.vn >= 0 {
		v.Normal = r.normals[ref.vn]
		g.normals = true
	}
	i := uint32(len(g.vertices))
	g.vertices = append(g.vertices, v)
	g.lookup[ref] = i
	return i
}

// parseRef resolves "v", "v/vt", "v//vn" and "v/vt/vn", including negative
// indices counted back from the latest element.
func (r *objReader) parseRef(tok string) (objRef, error) {
	ref := objRef{-1, -1, -1}
	parts := strings.Split(tok, "/")
	counts := [3]int{len(r.positions), len(r.uvs), len(r.normals)}
	out := [3]*int{&ref.v, &ref.vt, &ref.vn}
	for i := 0; i < len(parts) && i < 3; i++ {
		if parts[i] == "" {
			continue
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return ref, fmt.Errorf("face index %q: %w", tok, err)
		}
		if n < 0 {
			n += counts[i]
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return ref, fmt.Errorf("face index %q out of range", tok)
		}
		*out[i] = n
	}
	if ref.v < 0 {
		return ref, fmt.Errorf("face vertex %q has no position", tok)
	}
	return ref, nil
}

func (r *objReader) flush() {
	g := r.group
	if len(g.indices) == 0 {
		return
	}
	if !g.normals {
		smoothNormals(g.vertices, g.indices)
	}
	mesh := CreateMeshFromData(g.name, g.vertices, g.indices)
	if m, ok := r.materials[g.material]; ok {
		mesh.Material = m
	} else {
		mesh.Material = DefaultMaterial()
	}
	r.meshes = append(r.meshes, mesh)
	r.group = newOBJGroup(g.name, g.material)
}

// smoothNormals averages area-weighted face normals into each vertex.
func smoothNormals(vertices []core.Vertex, indices []uint32) {
	sum := make([]remath.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[a].Position
		n := vertices[b].Position.Sub(p0).Cross(vertices[c].Position.Sub(p0))
		sum[a] = sum[a].Add(n)
		sum[b] = sum[b].Add(n)
		sum[c] = sum[c].Add(n)
	}
	for i := range vertices {
		if sum[i].LengthSqr() > 0 {
			vertices[i].Normal = sum[i].Normalize()
		}
	}
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseVec3(args []string) (remath.Vec3, error) {
	f, err := parseFloats(args, 3)
	if err != nil {
		return remath.Vec3{}, err
	}
	return remath.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

// loadMTL reads the Kd, Ks and map_Kd entries of a material library.
func loadMTL(path, dir string, textures *TextureCache) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*Material{}
	var cur *Material
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "newmtl" {
			cur = DefaultMaterial()
			cur.Name = fields[1]
			mats[cur.Name] = cur
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			if c, err := parseVec3(fields[1:]); err == nil {
				cur.Albedo = core.Color{R: c.X, G: c.Y, B: c.Z, A: 1}
			}
		case "Ks":
			// Only one specular channel reaches the G-buffer.
			if c, err := parseVec3(fields[1:]); err == nil {
				cur.SpecularIntensity = remath.Min(1, (c.X+c.Y+c.Z)/3)
			}
		case "map_Kd":
			if tex, err := textures.GetOrPlaceholder(filepath.Join(dir, fields[len(fields)-1])); err == nil {
				cur.AlbedoTexture = tex
			}
		}
	}
	return mats, sc.Err()
}

package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"render-demos/core"
	"render-demos/math"
)

// GLTFResult is the node graph of a .glb / .gltf file.
type GLTFResult struct {
	Roots    []*Node
	Textures []*Texture

	// Warnings lists parts of the file that were skipped.
	Warnings []error
}

// LoadGLTF reads the default scene of a glTF file. Base colour and its
// texture become the albedo; roughness is folded into the specular intensity.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	l := &gltfLoader{doc: doc, dir: filepath.Dir(path), res: &GLTFResult{}}
	l.loadTextures()
	l.loadMaterials()
	l.loadMeshes()
	l.loadNodes()
	return l.res, nil
}

type gltfLoader struct {
	doc *gltf.Document
	dir string
	res *GLTFResult

	textures  []*Texture
	materials []*Material
	meshes    [][]*Mesh // per glTF mesh, one entry per primitive
	nodes     []*Node
}

func (l *gltfLoader) warn(format string, args ...any) {
	l.res.Warnings = append(l.res.Warnings, fmt.Errorf("gltf: "+format, args...))
}

func (l *gltfLoader) loadTextures() {
	l.textures = make([]*Texture, len(l.doc.Textures))
	for i, gt := range l.doc.Textures {
		if gt.Source == nil || *gt.Source >= len(l.doc.Images) {
			continue
		}
		tex, err := l.image(*gt.Source)
		if err != nil {
			l.warn("image %d: %w", *gt.Source, err)
			continue
		}
		if tex != nil {
			l.textures[i] = tex
			l.res.Textures = append(l.res.Textures, tex)
		}
	}
}

// image decodes an image from a GLB buffer view or an external file.
// Data URIs are not supported and yield nil.
func (l *gltfLoader) image(idx int) (*Texture, error) {
	img := l.doc.Images[idx]
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(l.doc, l.doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, err
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image_%d", idx)
		}
		return decodeImageBytes(name, img.MimeType, raw)
	case img.URI != "" && !img.IsEmbeddedResource():
		return LoadTexture(filepath.Join(l.dir, img.URI))
	}
	return nil, nil
}

func (l *gltfLoader) loadMaterials() {
	l.materials = make([]*Material, len(l.doc.Materials))
	for i, gm := range l.doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{R: float32(c[0]), G: float32(c[1]), B: float32(c[2]), A: float32(c[3])}
			if bt := pbr.BaseColorTexture; bt != nil && bt.Index < len(l.textures) {
				mat.AlbedoTexture = l.textures[bt.Index]
			}
			mat.SpecularIntensity = 1 - float32(pbr.RoughnessFactorOrDefault())
		}
		l.materials[i] = mat
	}
}

func (l *gltfLoader) loadMeshes() {
	l.meshes = make([][]*Mesh, len(l.doc.Meshes))
	for mi, gm := range l.doc.Meshes {
		for pi, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				l.warn("mesh %d primitive %d: mode %v is not a triangle list", mi, pi, prim.Mode)
				continue
			}
			name := fmt.Sprintf("%s_p%d", gm.Name, pi)
			if gm.Name == "" {
				name = fmt.Sprintf("mesh%d_p%d", mi, pi)
			}
			m, err := l.primitive(name, prim)
			if err != nil {
				l.warn("mesh %d primitive %d: %w", mi, pi, err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(l.materials) {
				m.Material = l.materials[*prim.Material]
			}
			l.meshes[mi] = append(l.meshes[mi], m)
		}
	}
}

func (l *gltfLoader) primitive(name string, prim *gltf.Primitive) (*Mesh, error) {
	doc := l.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
	}
	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		verts[i].Position = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
		if i < len(normals) {
			verts[i].Normal = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		if i < len(uvs) {
			verts[i].UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
	}
	m := CreateMeshFromData(name, verts, indices)
	if len(normals) < len(verts) {
		smoothNormals(m.Vertices, m.Indices)
	}
	return m, nil
}

func (l *gltfLoader) loadNodes() {
	doc := l.doc
	l.nodes = make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)
		t, s, r := gn.TranslationOrDefault(), gn.ScaleOrDefault(), gn.RotationOrDefault()
		n.SetPosition(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})
		n.SetScale(math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])})
		n.SetRotation(math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])})

		if gn.Mesh != nil && *gn.Mesh < len(l.meshes) {
			prims := l.meshes[*gn.Mesh]
			if len(prims) == 1 {
				n.Mesh = prims[0]
			} else {
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_p%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		l.nodes[i] = n
	}

	hasParent := make([]bool, len(l.nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(l.nodes) {
				l.nodes[i].AddChild(l.nodes[c])
				hasParent[c] = true
			}
		}
	}

	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			if idx < len(l.nodes) {
				l.res.Roots = append(l.res.Roots, l.nodes[idx])
			}
		}
		return
	}
	for i, n := range l.nodes {
		if !hasParent[i] {
			l.res.Roots = append(l.res.Roots, n)
		}
	}
}

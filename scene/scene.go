package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"render-demos/math"
)

// Scene manages a collection of nodes, the camera and the single light.
type Scene struct {
	Root   *Node
	Camera Camera
	Light  PointLight
}

// DrawItem is one mesh instance submitted to the geometry pass.
type DrawItem struct {
	Mesh          *Mesh
	Model         math.Mat4
	InvertNormals bool
}

func NewScene() *Scene {
	return &Scene{
		Root:   NewNode("Root"),
		Camera: DefaultCamera(),
		Light:  DefaultPointLight(),
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// DrawItems flattens the visible part of the graph. A hidden node hides its
// subtree.
func (s *Scene) DrawItems() []DrawItem {
	var items []DrawItem
	var walk func(n *Node, invert bool)
	walk = func(n *Node, invert bool) {
		if !n.Visible {
			return
		}
		invert = invert || n.InvertNormals
		if n.Mesh != nil {
			items = append(items, DrawItem{
				Mesh:          n.Mesh,
				Model:         n.GetWorldMatrix(),
				InvertNormals: invert,
			})
		}
		for _, c := range n.Children {
			walk(c, invert)
		}
	}
	walk(s.Root, false)
	return items
}

// LoadModel loads an OBJ or glTF file into a single node. A glTF file with
// skipped parts returns both the node and an error.
func LoadModel(path string) (*Node, error) {
	ext := strings.ToLower(filepath.Ext(path))
	node := NewNode(filepath.Base(path))
	switch ext {
	case ".obj":
		meshes, err := LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		for _, m := range meshes {
			child := NewNode(m.Name)
			child.Mesh = m
			node.AddChild(child)
		}
	case ".gltf", ".glb":
		res, err := LoadGLTF(path)
		if err != nil {
			return nil, err
		}
		for _, r := range res.Roots {
			node.AddChild(r)
		}
		if len(res.Warnings) > 0 {
			// Partially loaded: usable, but the caller should hear about it.
			return node, &AssetLoadError{Path: path, Err: errors.Join(res.Warnings...)}
		}
	default:
		return nil, &AssetLoadError{Path: path, Err: fmt.Errorf("unsupported model format %q", ext)}
	}
	return node, nil
}

// DemoOptions selects what BuildDemoScene puts in the room.
type DemoOptions struct {
	ModelPath string // empty renders the placeholder sphere
	Light     PointLight

	// AlbedoTexture replaces the albedo texture of every mesh of the loaded
	// model. It is looked up through Textures.
	AlbedoTexture string
	Textures      *TextureCache
}

// BuildDemoScene lays out the SSAO showcase: a large box seen from inside
// with one model standing on its floor. When the model cannot be loaded the
// scene uses a sphere instead and the load error is returned alongside it.
func BuildDemoScene(prims *Primitives, opts DemoOptions) (*Scene, error) {
	s := NewScene()
	s.Light = opts.Light

	room := NewNode("Room")
	room.Mesh = prims.Cube
	room.InvertNormals = true
	room.SetPosition(math.Vec3{X: 0, Y: 7, Z: 0})
	room.SetScale(math.Vec3{X: 7.5, Y: 7.5, Z: 7.5})
	s.AddNode(room)

	var loadErr error
	var model *Node
	if opts.ModelPath != "" {
		model, loadErr = LoadModel(opts.ModelPath)
	}
	if model == nil {
		model = NewNode("Placeholder")
		model.Mesh = prims.Sphere
		model.SetPosition(math.Vec3{X: 0, Y: 0.5, Z: 0})
	} else {
		model.SetPosition(math.Vec3{X: 0, Y: 0.5, Z: 0})
		model.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Right, math.Radians(-90)))
		if opts.AlbedoTexture != "" && opts.Textures != nil {
			tex, err := opts.Textures.GetOrPlaceholder(opts.AlbedoTexture)
			loadErr = errors.Join(loadErr, err)
			model.Traverse(func(n *Node) {
				if n.Mesh == nil {
					return
				}
				m := *n.Mesh.MaterialOrDefault()
				m.AlbedoTexture = tex
				n.Mesh.Material = &m
			})
		}
	}
	s.AddNode(model)

	return s, loadErr
}

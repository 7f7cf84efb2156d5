package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-demos/renderer"
	"render-demos/scene"
)

const geometryVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 modelView;
uniform mat4 normalMatrix;
uniform mat4 projection;
uniform bool invertNormals;

out vec3 fragPos;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    vec4 viewPos = modelView * vec4(inPosition, 1.0);
    vec3 n       = mat3(normalMatrix) * inNormal;
    fragPos      = viewPos.xyz;
    fragNormal   = invertNormals ? -n : n;
    fragUV       = inUV;
    gl_Position  = projection * viewPos;
}
` + "\x00"

const geometryFragSrc = `
#version 410 core
in vec3 fragPos;
in vec3 fragNormal;
in vec2 fragUV;

layout(location = 0) out vec4 gPosition;
layout(location = 1) out vec4 gNormal;
layout(location = 2) out vec4 gAlbedo;

uniform vec3      albedo;
uniform float     specular;
uniform sampler2D albedoTex;
uniform bool      hasTexture;

void main() {
    vec3 c = albedo;
    if (hasTexture) c *= texture(albedoTex, fragUV).rgb;
    gPosition = vec4(fragPos, 1.0);
    gNormal   = vec4(normalize(fragNormal), 0.0);
    gAlbedo   = vec4(c, specular);
}
` + "\x00"

type geometryPass struct {
	prog     *program
	meshes   *meshCache
	uploaded []*scene.Texture

	// textures that failed to upload; they render untextured
	failed map[*scene.Texture]bool
}

func newGeometryPass() (*geometryPass, error) {
	prog, err := newProgram("geometry", geometryVertSrc, geometryFragSrc)
	if err != nil {
		return nil, err
	}
	prog.use()
	prog.setInt("albedoTex", 0)
	return &geometryPass{prog: prog, meshes: newMeshCache(), failed: make(map[*scene.Texture]bool)}, nil
}

func (g *geometryPass) run(f *renderer.FrameData, gbuffer *target) {
	gbuffer.bind()
	gl.ClearColor(0, 0, 0, 0)
	gl.ClearDepth(1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	g.prog.use()
	g.prog.setMat4("projection", f.Projection)
	for _, item := range f.Items {
		if item.Mesh == nil {
			continue
		}
		modelView := item.Model.Mul(f.View)
		g.prog.setMat4("modelView", modelView)
		g.prog.setMat4("normalMatrix", modelView.NormalMatrix())
		g.prog.setBool("invertNormals", item.InvertNormals)
		g.applyMaterial(item.Mesh.MaterialOrDefault())
		g.meshes.draw(item.Mesh)
	}
	gl.Disable(gl.DEPTH_TEST)
}

func (g *geometryPass) applyMaterial(m *scene.Material) {
	g.prog.setVec3("albedo", m.Albedo.RGB())
	g.prog.setFloat("specular", m.SpecularIntensity)

	tex := m.AlbedoTexture
	if tex != nil && tex.GLID == 0 && !g.failed[tex] {
		if err := UploadTexture(tex); err != nil {
			g.failed[tex] = true
			renderer.Logger().Warn("texture upload failed", "texture", tex.Name, "err", err)
		} else {
			g.uploaded = append(g.uploaded, tex)
		}
	}
	if tex == nil || tex.GLID == 0 {
		g.prog.setBool("hasTexture", false)
		return
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	g.prog.setBool("hasTexture", true)
}

func (g *geometryPass) destroy() {
	for _, tex := range g.uploaded {
		DeleteTexture(tex)
	}
	g.meshes.destroy()
	g.prog.destroy()
}

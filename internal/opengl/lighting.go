package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-demos/renderer"
	"render-demos/ssao"
)

// lightingFragSrc is the composition pass: Blinn-Phong with one attenuated
// point light, occlusion on the ambient term only, and the debug views.
const lightingFragSrc = `
#version 410 core
out vec4 outColor;

uniform sampler2D gPosition;   // unit 0
uniform sampler2D gNormal;     // unit 1
uniform sampler2D gAlbedo;     // unit 2
uniform sampler2D ssaoRaw;     // unit 3
uniform sampler2D ssaoBlurred; // unit 4

uniform int   view;
uniform bool  enableSSAO;
uniform vec3  lightPos;        // view space
uniform vec3  lightColor;
uniform float linear;
uniform float quadratic;
uniform float ambientStrength;
uniform float specularPower;
uniform vec3  background;

void main() {
    ivec2 px = ivec2(gl_FragCoord.xy);
    vec4 p = texelFetch(gPosition, px, 0);
    vec3 n = texelFetch(gNormal, px, 0).xyz;
    vec4 a = texelFetch(gAlbedo, px, 0);

    vec3 c;
    if (view == 1) {
        c = p.xyz * 0.1 + 0.5;
    } else if (view == 2) {
        c = n * 0.5 + 0.5;
    } else if (view == 3) {
        c = a.rgb;
    } else if (view == 4) {
        c = vec3(texelFetch(ssaoRaw, px, 0).r);
    } else if (view == 5) {
        c = vec3(texelFetch(ssaoBlurred, px, 0).r);
    } else if (p.w <= 0.5) {
        c = background;
    } else {
        float ao = enableSSAO ? texelFetch(ssaoBlurred, px, 0).r : 1.0;
        vec3 P = p.xyz;
        vec3 N = normalize(n);
        vec3 ambient = a.rgb * ambientStrength * ao;

        vec3  toLight = lightPos - P;
        float dist    = length(toLight);
        vec3  L = normalize(toLight);
        vec3  V = normalize(-P);
        vec3  H = normalize(L + V);

        vec3  diffuse  = max(dot(N, L), 0.0) * a.rgb * lightColor;
        vec3  specular = lightColor * a.a * pow(max(dot(N, H), 0.0), specularPower);
        float att      = 1.0 / (1.0 + linear * dist + quadratic * dist * dist);
        c = ambient + (diffuse + specular) * att;
    }
    outColor = vec4(clamp(c, 0.0, 1.0), 1.0);
}
` + "\x00"

type lightingPass struct {
	prog *program
}

func newLightingPass() (*lightingPass, error) {
	prog, err := newProgram("lighting", fullscreenVertSrc, lightingFragSrc)
	if err != nil {
		return nil, err
	}
	prog.use()
	prog.setInt("gPosition", 0)
	prog.setInt("gNormal", 1)
	prog.setInt("gAlbedo", 2)
	prog.setInt("ssaoRaw", 3)
	prog.setInt("ssaoBlurred", 4)
	prog.setFloat("ambientStrength", ssao.AmbientStrength)
	prog.setFloat("specularPower", ssao.SpecularPower)
	prog.setVec3("background", ssao.BackgroundColor)
	return &lightingPass{prog: prog}, nil
}

// run draws into the default framebuffer.
func (l *lightingPass) run(f *renderer.FrameData, gbuffer, raw, blurred *target, width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	l.prog.use()

	for i, tex := range []uint32{
		gbuffer.texture(renderer.AttachmentPosition),
		gbuffer.texture(renderer.AttachmentNormal),
		gbuffer.texture(renderer.AttachmentAlbedo),
		raw.texture(renderer.AttachmentOcclusion),
		blurred.texture(renderer.AttachmentOcclusion),
	} {
		gl.ActiveTexture(uint32(gl.TEXTURE0 + i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}

	l.prog.setInt("view", int32(f.DebugView))
	l.prog.setBool("enableSSAO", f.Params.EnableSSAO)
	l.prog.setVec3("lightPos", f.LightPosition)
	l.prog.setVec3("lightColor", f.Light.Color.RGB())
	l.prog.setFloat("linear", f.Light.Linear)
	l.prog.setFloat("quadratic", f.Light.Quadratic)

	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (l *lightingPass) destroy() { l.prog.destroy() }

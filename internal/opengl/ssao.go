package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-demos/renderer"
	"render-demos/ssao"
)

// ssaoFragSrc samples a hemisphere of kernel points around each covered
// pixel and compares their depth with the position buffer.
const ssaoFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outAO;

uniform sampler2D gPosition; // unit 0, view space, w = coverage
uniform sampler2D gNormal;   // unit 1, view space
uniform sampler2D noiseTex;  // unit 2, tiled rotation vectors
uniform vec3  samples[64];
uniform int   kernelSize;
uniform mat4  projection;
uniform float radius;
uniform float bias;
uniform vec2  noiseScale;    // screen size / tile size

void main() {
    vec4 p = texture(gPosition, fragUV);
    if (p.w <= 0.5) { outAO = vec4(1.0); return; }

    vec3 pos    = p.xyz;
    vec3 normal = normalize(texture(gNormal, fragUV).xyz);
    vec3 rnd    = texture(noiseTex, fragUV * noiseScale).xyz;

    // Gram-Schmidt; fall back to a fixed axis when rnd is parallel to the normal.
    vec3 T = rnd - normal * dot(rnd, normal);
    if (dot(T, T) < 1e-8) {
        vec3 axis = abs(normal.x) > 0.9 ? vec3(0.0, 1.0, 0.0) : vec3(1.0, 0.0, 0.0);
        T = axis - normal * dot(axis, normal);
    }
    T = normalize(T);
    vec3 B   = cross(normal, T);
    mat3 TBN = mat3(T, B, normal);

    float occ = 0.0;
    for (int i = 0; i < kernelSize; i++) {
        vec3 s   = pos + TBN * samples[i] * radius;
        vec4 off = projection * vec4(s, 1.0);
        if (off.w <= 0.0) continue;
        vec2 suv = clamp(off.xy / off.w * 0.5 + 0.5, 0.0, 1.0);

        vec4 g = texture(gPosition, suv);
        if (g.w <= 0.5) continue;

        // Larger z is closer to the camera.
        float rangeCheck = 1.0 - smoothstep(radius, 2.0 * radius, abs(pos.z - g.z));
        occ += (g.z >= s.z + bias ? 1.0 : 0.0) * rangeCheck;
    }
    outAO = vec4(1.0 - occ / float(kernelSize), 0.0, 0.0, 1.0);
}
` + "\x00"

// blurFragSrc averages a size x size window over offsets [-size/2, size/2)
// with clamp-to-edge texel reads.
const blurFragSrc = `
#version 410 core
out vec4 outAO;

uniform sampler2D ssaoInput;
uniform int size;

void main() {
    ivec2 p    = ivec2(gl_FragCoord.xy);
    ivec2 maxp = textureSize(ssaoInput, 0) - 1;
    int lo = -size / 2;
    int hi = size - size / 2;
    float result = 0.0;
    for (int y = lo; y < hi; y++) {
        for (int x = lo; x < hi; x++) {
            result += texelFetch(ssaoInput, clamp(p + ivec2(x, y), ivec2(0), maxp), 0).r;
        }
    }
    outAO = vec4(result / float(size * size), 0.0, 0.0, 1.0);
}
` + "\x00"

// ssaoPasses owns the occlusion and blur programs and the noise texture.
type ssaoPasses struct {
	ssaoProg  *program
	blurProg  *program
	noiseTex  uint32
	noiseSize int
}

func newSSAOPasses() (*ssaoPasses, error) {
	ssaoProg, err := newProgram("ssao", fullscreenVertSrc, ssaoFragSrc)
	if err != nil {
		return nil, err
	}
	blurProg, err := newProgram("ssao-blur", fullscreenVertSrc, blurFragSrc)
	if err != nil {
		ssaoProg.destroy()
		return nil, err
	}

	ssaoProg.use()
	ssaoProg.setInt("gPosition", 0)
	ssaoProg.setInt("gNormal", 1)
	ssaoProg.setInt("noiseTex", 2)
	blurProg.use()
	blurProg.setInt("ssaoInput", 0)

	return &ssaoPasses{ssaoProg: ssaoProg, blurProg: blurProg}, nil
}

// prepare uploads every kernel sample once and creates the noise texture:
// RGB32F, nearest filtering, repeat wrapping so it tiles over the screen.
func (s *ssaoPasses) prepare(kernel ssao.Kernel, noise ssao.NoiseTile) error {
	if len(kernel) > ssao.MaxKernelSize {
		return fmt.Errorf("kernel has %d samples, shader holds %d", len(kernel), ssao.MaxKernelSize)
	}
	s.ssaoProg.use()
	s.ssaoProg.setVec3Array("samples[0]", kernel.Floats())

	if s.noiseTex != 0 {
		gl.DeleteTextures(1, &s.noiseTex)
	}
	data := noise.Floats()
	gl.GenTextures(1, &s.noiseTex)
	gl.BindTexture(gl.TEXTURE_2D, s.noiseTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB32F, int32(noise.Size), int32(noise.Size), 0, gl.RGB, gl.FLOAT, gl.Ptr(data))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	s.noiseSize = noise.Size
	return nil
}

func (s *ssaoPasses) runSSAO(f *renderer.FrameData, gbuffer, out *target) {
	out.bind()
	s.ssaoProg.use()

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, gbuffer.texture(renderer.AttachmentPosition))
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, gbuffer.texture(renderer.AttachmentNormal))
	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_2D, s.noiseTex)

	n := float32(max(s.noiseSize, 1))
	s.ssaoProg.setMat4("projection", f.Projection)
	s.ssaoProg.setInt("kernelSize", int32(len(f.Kernel)))
	s.ssaoProg.setFloat("radius", f.Params.Radius)
	s.ssaoProg.setFloat("bias", f.Params.Bias)
	s.ssaoProg.setVec2("noiseScale", float32(out.spec.Width)/n, float32(out.spec.Height)/n)

	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (s *ssaoPasses) runBlur(f *renderer.FrameData, raw, out *target) {
	out.bind()
	s.blurProg.use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, raw.texture(renderer.AttachmentOcclusion))
	s.blurProg.setInt("size", int32(max(f.Params.NoiseSize, 1)))
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (s *ssaoPasses) destroy() {
	if s.noiseTex != 0 {
		gl.DeleteTextures(1, &s.noiseTex)
		s.noiseTex = 0
	}
	s.ssaoProg.destroy()
	s.blurProg.destroy()
}

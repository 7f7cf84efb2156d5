package math

import (
	"math"
	"testing"
)

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	// Addition
	result := v1.Add(v2)
	expected := NewVec3(5, 7, 9)
	if result != expected {
		t.Errorf("Add: expected %v, got %v", expected, result)
	}

	// Subtraction
	result = v2.Sub(v1)
	expected = NewVec3(3, 3, 3)
	if result != expected {
		t.Errorf("Sub: expected %v, got %v", expected, result)
	}

	// Scalar multiplication
	result = v1.Mul(2)
	expected = NewVec3(2, 4, 6)
	if result != expected {
		t.Errorf("Mul: expected %v, got %v", expected, result)
	}

	// Dot product
	dot := v1.Dot(v2)
	expectedDot := float32(32) // 1*4 + 2*5 + 3*6
	if dot != expectedDot {
		t.Errorf("Dot: expected %v, got %v", expectedDot, dot)
	}

	// Cross product (Right x Up = Front in right-handed system)
	cross := Vec3Right.Cross(Vec3Up)
	if cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 0, 0)
	normalized := v.Normalize()
	expected := NewVec3(1, 0, 0)

	if normalized != expected {
		t.Errorf("Normalize: expected %v, got %v", expected, normalized)
	}

	// Check length is 1
	length := normalized.Length()
	if math.Abs(float64(length-1)) > 0.0001 {
		t.Errorf("Normalize: expected length 1, got %v", length)
	}
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()

	// Check diagonal is 1
	for i := 0; i < 4; i++ {
		if m[i][i] != 1 {
			t.Errorf("Identity: expected diagonal to be 1, got %v", m[i][i])
		}
	}

	// Check non-diagonal is 0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j && m[i][j] != 0 {
				t.Errorf("Identity: expected non-diagonal to be 0, got %v", m[i][j])
			}
		}
	}
}

func TestMat4Multiplication(t *testing.T) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	result := m1.Mul(m2)

	// Identity * Identity = Identity
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			expected := float32(0)
			if i == j {
				expected = 1
			}
			if result[i][j] != expected {
				t.Errorf("Mul: expected [%d][%d] = %v, got %v", i, j, expected, result[i][j])
			}
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	// Check translation components
	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}

	// Test transforming a point
	point := NewVec4(0, 0, 0, 1)
	result := point.MulMat(m)

	if result.ToVec3() != translation {
		t.Errorf("Translation: expected %v, got %v", translation, result.ToVec3())
	}
}

func TestQuaternionIdentity(t *testing.T) {
	q := QuaternionIdentity()

	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("QuaternionIdentity: expected (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degree rotation around Y axis
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))

	// Rotate the X unit vector 90 degrees around Y should give Z
	result := q.RotateVector(Vec3Right)

	// Check that result is approximately -Z (due to coordinate system)
	tolerance := float32(0.001)
	if math.Abs(float64(result.X-0)) > float64(tolerance) ||
		math.Abs(float64(result.Y-0)) > float64(tolerance) ||
		math.Abs(float64(result.Z+1)) > float64(tolerance) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestMat4Perspective(t *testing.T) {
	near := float32(0.1)
	far := float32(50.0)
	m := Mat4Perspective(Radians(45), 16.0/9.0, near, far)

	// Near and far planes land on NDC -1 and +1.
	nearNDC := m.MulVec3(NewVec3(0, 0, -near))
	if math.Abs(float64(nearNDC.Z+1)) > 1e-4 {
		t.Errorf("Perspective: near plane expected z=-1, got %v", nearNDC.Z)
	}
	farNDC := m.MulVec3(NewVec3(0, 0, -far))
	if math.Abs(float64(farNDC.Z-1)) > 1e-3 {
		t.Errorf("Perspective: far plane expected z=1, got %v", farNDC.Z)
	}

	// A point on the view axis projects to the centre.
	centre := m.MulVec3(NewVec3(0, 0, -3))
	if math.Abs(float64(centre.X)) > 1e-6 || math.Abs(float64(centre.Y)) > 1e-6 {
		t.Errorf("Perspective: expected centre, got (%v,%v)", centre.X, centre.Y)
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	target := NewVec3(0, 0, 0)
	up := Vec3Up

	m := Mat4LookAt(eye, target, up)

	// The view matrix should transform the eye position to origin
	point := eye.ToVec4(1)
	result := m.MulVec(point)

	tolerance := float32(0.001)
	if math.Abs(float64(result.X)) > float64(tolerance) ||
		math.Abs(float64(result.Y)) > float64(tolerance) ||
		math.Abs(float64(result.Z)) > float64(tolerance) {
		t.Errorf("LookAt: expected eye to transform to origin, got (%v,%v,%v)", result.X, result.Y, result.Z)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Mat4TRS(NewVec3(1, -2, 3), NewVec3(0.3, 1.1, -0.4), NewVec3(2, 0.5, 1.5))
	product := m.Mul(m.Inverse())
	identity := Mat4Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(float64(product[i][j]-identity[i][j])) > 1e-4 {
				t.Fatalf("Inverse: m * inv(m) [%d][%d] = %v", i, j, product[i][j])
			}
		}
	}

	if Mat4Zero().Inverse() != Mat4Identity() {
		t.Error("Inverse: singular matrix should yield identity")
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// A 45 degree slope scaled 2x along X must stay perpendicular to its surface.
	m := Mat4Scale(NewVec3(2, 1, 1))
	tangent := m.MulDir(NewVec3(1, 1, 0))
	normal := m.NormalMatrix().MulDir(NewVec3(-1, 1, 0)).Normalize()
	if d := tangent.Dot(normal); math.Abs(float64(d)) > 1e-5 {
		t.Errorf("NormalMatrix: normal not perpendicular to surface, dot=%v", d)
	}
}

func TestMulDirIgnoresTranslation(t *testing.T) {
	m := Mat4Translation(NewVec3(5, 6, 7))
	if got := m.MulDir(Vec3Up); got != Vec3Up {
		t.Errorf("MulDir: expected %v, got %v", Vec3Up, got)
	}
}

func TestSmoothstep(t *testing.T) {
	cases := []struct {
		x, want float32
	}{
		{0.2, 0},
		{0.5, 0},
		{0.75, 0.5},
		{1.0, 1},
		{3.0, 1},
	}
	for _, c := range cases {
		if got := Smoothstep(0.5, 1.0, c.x); math.Abs(float64(got-c.want)) > 1e-6 {
			t.Errorf("Smoothstep(0.5, 1, %v): expected %v, got %v", c.x, c.want, got)
		}
	}
}

func BenchmarkVec3Add(b *testing.B) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	for i := 0; i < b.N; i++ {
		_ = v1.Add(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

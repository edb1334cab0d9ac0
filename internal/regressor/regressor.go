// Package regressor builds the linear-in-parameters rigid-body
// regressor Y(Ω,α) such that τ_rb = J·α − Ω×(J·Ω) = Y·θ, for either a
// diagonal (3-parameter) or full symmetric (6-parameter) inertia
// model. Intermediate arithmetic is carried in float64; callers at the
// float32 control-path boundary convert at the edges.
package regressor

// DiagonalTheta orders the diagonal inertia parameter vector.
type DiagonalTheta [3]float64 // Jxx, Jyy, Jzz

// FullTheta orders the full symmetric inertia parameter vector.
type FullTheta [6]float64 // Jxx, Jyy, Jzz, Jxy, Jxz, Jyz

// Diagonal builds the 3x3 regressor for the diagonal inertia model.
// Columns correspond to (Jxx, Jyy, Jzz).
func Diagonal(omega, alpha [3]float64) [3][3]float64 {
	wx, wy, wz := omega[0], omega[1], omega[2]
	ax, ay, az := alpha[0], alpha[1], alpha[2]
	return [3][3]float64{
		{ax, wy * wz, -wy * wz},
		{-wx * wz, ay, wx * wz},
		{wx * wy, -wx * wy, az},
	}
}

// Full builds the 3x6 regressor for the full symmetric inertia model.
// Columns correspond to (Jxx, Jyy, Jzz, Jxy, Jxz, Jyz).
func Full(omega, alpha [3]float64) [3][6]float64 {
	wx, wy, wz := omega[0], omega[1], omega[2]
	ax, ay, az := alpha[0], alpha[1], alpha[2]
	return [3][6]float64{
		{ax, wy * wz, -wy * wz, ay + wx*wz, az - wx*wy, -wy*wy + wz*wz},
		{-wx * wz, ay, wx * wz, ax - wy*wz, wx*wx - wz*wz, az + wx*wy},
		{wx * wy, -wx * wy, az, wy*wy - wx*wx, ax + wy*wz, ay - wx*wz},
	}
}

// ApplyDiagonal returns Y·θ for the diagonal regressor.
func ApplyDiagonal(y [3][3]float64, theta DiagonalTheta) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i] += y[i][j] * theta[j]
		}
	}
	return out
}

// ApplyFull returns Y·θ for the full regressor.
func ApplyFull(y [3][6]float64, theta FullTheta) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 6; j++ {
			out[i] += y[i][j] * theta[j]
		}
	}
	return out
}

// InertiaFromDiagonal reconstructs the 3x3 inertia matrix from a
// diagonal theta.
func InertiaFromDiagonal(theta DiagonalTheta) [3][3]float64 {
	return [3][3]float64{
		{theta[0], 0, 0},
		{0, theta[1], 0},
		{0, 0, theta[2]},
	}
}

// InertiaFromFull reconstructs the symmetric 3x3 inertia matrix from a
// full theta ordered (Jxx, Jyy, Jzz, Jxy, Jxz, Jyz).
func InertiaFromFull(theta FullTheta) [3][3]float64 {
	return [3][3]float64{
		{theta[0], theta[3], theta[4]},
		{theta[3], theta[1], theta[5]},
		{theta[4], theta[5], theta[2]},
	}
}

// ThetaFromInertiaDiagonal extracts the diagonal of J as a theta.
func ThetaFromInertiaDiagonal(j [3][3]float64) DiagonalTheta {
	return DiagonalTheta{j[0][0], j[1][1], j[2][2]}
}

// ThetaFromInertiaFull extracts the six independent entries of a
// symmetric J as a theta, ordered (Jxx, Jyy, Jzz, Jxy, Jxz, Jyz).
func ThetaFromInertiaFull(j [3][3]float64) FullTheta {
	return FullTheta{j[0][0], j[1][1], j[2][2], j[0][1], j[0][2], j[1][2]}
}

// RigidBodyTorque returns J·α − Ω×(J·Ω), the ground-truth rigid-body
// torque, used only by validation tests, never on the control path.
func RigidBodyTorque(j [3][3]float64, omega, alpha [3]float64) [3]float64 {
	jAlpha := matVec(j, alpha)
	jOmega := matVec(j, omega)
	cross := [3]float64{
		omega[1]*jOmega[2] - omega[2]*jOmega[1],
		omega[2]*jOmega[0] - omega[0]*jOmega[2],
		omega[0]*jOmega[1] - omega[1]*jOmega[0],
	}
	return [3]float64{jAlpha[0] - cross[0], jAlpha[1] - cross[1], jAlpha[2] - cross[2]}
}

func matVec(a [3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = a[i][0]*v[0] + a[i][1]*v[1] + a[i][2]*v[2]
	}
	return out
}

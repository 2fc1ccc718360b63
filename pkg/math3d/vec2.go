// Package math3d provides the small vector types used by the ornament
// geometry and its exporters.
package math3d

import "math"

// Vec2 represents a 2D vector.
//
// Methods with a value receiver leave the receiver untouched and return a new
// vector. Methods ending in InPlace modify the receiver and return it so calls
// can be chained.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Zero2 returns the zero vector.
func Zero2() Vec2 {
	return Vec2{}
}

// FromDegrees returns the unit vector pointing at deg degrees from the X axis.
func FromDegrees(deg float64) Vec2 {
	rad := deg * (math.Pi / 180)
	return Vec2{math.Cos(rad), math.Sin(rad)}.Normalize()
}

// Add returns the vector sum a + b.
func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product a * s.
func (a Vec2) Scale(s float64) Vec2 {
	return Vec2{a.X * s, a.Y * s}
}

// Div returns the scalar quotient a / s.
func (a Vec2) Div(s float64) Vec2 {
	return Vec2{a.X / s, a.Y / s}
}

// Dot returns the dot product a · b.
func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// Len returns the length of the vector.
func (a Vec2) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y)
}

// LenSq returns the squared length (faster, no sqrt).
func (a Vec2) LenSq() float64 {
	return a.X*a.X + a.Y*a.Y
}

// Normalize returns the unit vector. The zero vector is returned unchanged.
func (a Vec2) Normalize() Vec2 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.Div(l)
}

// Negate returns the negated vector.
func (a Vec2) Negate() Vec2 {
	return Vec2{-a.X, -a.Y}
}

// Lerp returns linear interpolation between a and b.
func (a Vec2) Lerp(b Vec2, t float64) Vec2 {
	return Vec2{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
	}
}

// Rotate rotates the vector counter-clockwise by angle (radians).
func (a Vec2) Rotate(angle float64) Vec2 {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Vec2{
		a.X*cos - a.Y*sin,
		a.X*sin + a.Y*cos,
	}
}

// RotateCW rotates the vector by rad radians with the ornament convention:
//
//	x' =  x*cos(rad) + y*sin(rad)
//	y' = -x*sin(rad) + y*cos(rad)
//
// In a y-up frame this turns clockwise, in a y-down (image) frame it turns
// counter-clockwise on screen.
func (a Vec2) RotateCW(rad float64) Vec2 {
	cos, sin := math.Cos(rad), math.Sin(rad)
	return Vec2{
		a.X*cos + a.Y*sin,
		-a.X*sin + a.Y*cos,
	}
}

// RotateDegrees is RotateCW with the angle given in degrees.
func (a Vec2) RotateDegrees(deg float64) Vec2 {
	return a.RotateCW(deg * (math.Pi / 180))
}

// Angle returns the angle of the vector in radians.
func (a Vec2) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

// Distance returns the distance between two points.
func (a Vec2) Distance(b Vec2) float64 {
	return a.Sub(b).Len()
}

// AddInPlace adds b to a.
func (a *Vec2) AddInPlace(b Vec2) *Vec2 {
	a.X += b.X
	a.Y += b.Y
	return a
}

// SubInPlace subtracts b from a.
func (a *Vec2) SubInPlace(b Vec2) *Vec2 {
	a.X -= b.X
	a.Y -= b.Y
	return a
}

// ScaleInPlace multiplies a by s.
func (a *Vec2) ScaleInPlace(s float64) *Vec2 {
	a.X *= s
	a.Y *= s
	return a
}

// DivInPlace divides a by s.
func (a *Vec2) DivInPlace(s float64) *Vec2 {
	a.X /= s
	a.Y /= s
	return a
}

// NormalizeInPlace scales a to unit length. A zero vector is left as is.
func (a *Vec2) NormalizeInPlace() *Vec2 {
	l := a.Len()
	if l == 0 {
		return a
	}
	return a.DivInPlace(l)
}

// RotateCWInPlace is the mutating form of RotateCW.
func (a *Vec2) RotateCWInPlace(rad float64) *Vec2 {
	*a = a.RotateCW(rad)
	return a
}

// RotateDegreesInPlace is the mutating form of RotateDegrees.
func (a *Vec2) RotateDegreesInPlace(deg float64) *Vec2 {
	*a = a.RotateDegrees(deg)
	return a
}

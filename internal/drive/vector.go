package drive

import "math"

type Vector2d struct {
	X float64
	Y float64
}

// Rotate rotates the vector in place by angle degrees, counterclockwise.
func (v *Vector2d) Rotate(angle float64) {
	cosA := math.Cos(angle * (math.Pi / 180.0))
	sinA := math.Sin(angle * (math.Pi / 180.0))
	x := v.X*cosA - v.Y*sinA
	y := v.X*sinA + v.Y*cosA
	v.X = x
	v.Y = y
}

func (v Vector2d) Dot(other Vector2d) float64 {
	return v.X*other.X + v.Y*other.Y
}

func (v Vector2d) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// ScalarProject is the length of v projected onto other.
func (v Vector2d) ScalarProject(other Vector2d) float64 {
	return v.Dot(other) / other.Magnitude()
}

func unitVector(angle float64) Vector2d {
	return Vector2d{
		X: math.Cos(angle * (math.Pi / 180.0)),
		Y: math.Sin(angle * (math.Pi / 180.0)),
	}
}

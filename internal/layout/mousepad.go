package layout

import "github.com/verte-zerg/stepcost/internal/geom"

// Mouse is the physical pointing device.
type Mouse struct {
	Size geom.Size
}

// MousePad is the surface the mouse rests on, with an optional mouse.
type MousePad struct {
	Size  geom.Size
	Mouse *Mouse
}

// DefaultMousePad is an 18x18cm pad holding a 5.6x10.2cm mouse.
func DefaultMousePad() *MousePad {
	return &MousePad{
		Size:  geom.Size{Width: 18, Height: 18},
		Mouse: &Mouse{Size: geom.Size{Width: 5.6, Height: 10.2}},
	}
}

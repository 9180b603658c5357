package camera

import rl "github.com/gen2brain/raylib-go/raylib"

// RaylibInput reads the mouse through raylib. Left button rotates, right button pans.
type RaylibInput struct{}

func (RaylibInput) MouseDelta() rl.Vector2 {
	return rl.GetMouseDelta()
}

func (RaylibInput) WheelMove() float32 {
	return rl.GetMouseWheelMove()
}

func (RaylibInput) RotateDown() bool {
	return rl.IsMouseButtonDown(rl.MouseButtonLeft)
}

func (RaylibInput) PanDown() bool {
	return rl.IsMouseButtonDown(rl.MouseButtonRight)
}

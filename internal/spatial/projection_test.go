package spatial

import (
	"math"
	"testing"
)

func TestWorldPixelOrigin(t *testing.T) {
	x, y := WorldPixel(0, 0, 0, 256)
	if x != 128 || math.Abs(y-128) > 1e-9 {
		t.Fatalf("origin should map to the middle of the world: %v,%v", x, y)
	}

	x, _ = WorldPixel(0, -180, 3, 512)
	if x != 0 {
		t.Fatalf("antimeridian should map to x=0, got %v", x)
	}
}

func TestProjectCenterIsImageCenter(t *testing.T) {
	cases := []struct {
		lat, lon float64
		zoom, ts int
		w, h     int
	}{
		{-21.115, 55.53, 9, 512, 800, 600},
		{48.85, 2.35, 12, 256, 1600, 1200},
		{0, 0, 0, 128, 180, 120},
	}
	for _, c := range cases {
		x, y := ProjectToImagePixel(c.lat, c.lon, c.zoom, c.ts, c.lat, c.lon, c.w, c.h)
		if x != c.w/2 || y != c.h/2 {
			t.Errorf("center %v,%v -> %d,%d, want %d,%d", c.lat, c.lon, x, y, c.w/2, c.h/2)
		}
	}
}

func TestProjectorDirections(t *testing.T) {
	p := NewProjector(-21.115, 55.53, 9, 512, 800, 600)
	cx, cy := p.ToImage(-21.115, 55.53)

	ex, _ := p.ToImage(-21.115, 55.60)
	if ex <= cx {
		t.Errorf("east should increase x: %d <= %d", ex, cx)
	}
	_, ny := p.ToImage(-21.0, 55.53)
	if ny >= cy {
		t.Errorf("north should decrease y: %d >= %d", ny, cy)
	}
}

func TestProjectorTileSizeScales(t *testing.T) {
	small := NewProjector(0, 0, 5, 256, 1000, 1000)
	large := NewProjector(0, 0, 5, 512, 1000, 1000)

	sx, _ := small.ToImage(0, 1)
	lx, _ := large.ToImage(0, 1)
	if (lx - 500) != 2*(sx-500) {
		t.Fatalf("512px tiles should double the offset: 256->%d 512->%d", sx-500, lx-500)
	}
}

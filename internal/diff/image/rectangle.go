package image

import (
	"image"
)

// mergeDistance is how close two regions may be before they are reported as one.
const mergeDistance = 10

type Rectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// findRegions returns the bounding boxes of the 8-connected areas set in mask.
func findRegions(mask []bool, width int, height int) []Rectangle {
	visited := make([]bool, len(mask))

	var rectangles []Rectangle
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if mask[y*width+x] && !visited[y*width+x] {
				rectangles = append(rectangles, findBoundingBox(mask, visited, x, y, width, height))
			}
		}
	}

	return mergeRectangles(rectangles)
}

func findBoundingBox(mask []bool, visited []bool, startX int, startY int, width int, height int) Rectangle {
	minX, minY := startX, startY
	maxX, maxY := startX, startY

	queue := []image.Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	for len(queue) > 0 {
		point := queue[0]
		queue = queue[1:]

		minX = min(minX, point.X)
		maxX = max(maxX, point.X)
		minY = min(minY, point.Y)
		maxY = max(maxY, point.Y)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}

				nx := point.X + dx
				ny := point.Y + dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				i := ny*width + nx
				if mask[i] && !visited[i] {
					visited[i] = true
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}
		}
	}

	return Rectangle{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}
}

func mergeRectangles(rects []Rectangle) []Rectangle {
	if len(rects) <= 1 {
		return rects
	}

	merged := make([]Rectangle, 0, len(rects))
	used := make([]bool, len(rects))

	for i := 0; i < len(rects); i++ {
		if used[i] {
			continue
		}

		current := rects[i]
		mergedAny := true

		for mergedAny {
			mergedAny = false
			for j := i + 1; j < len(rects); j++ {
				if used[j] {
					continue
				}

				if rectanglesOverlap(current, rects[j]) || rectanglesClose(current, rects[j], mergeDistance) {
					current = combineRectangles(current, rects[j])
					used[j] = true
					mergedAny = true
				}
			}
		}

		merged = append(merged, current)
	}

	return merged
}

func rectanglesOverlap(r1 Rectangle, r2 Rectangle) bool {
	return !(r1.X+r1.Width <= r2.X || r2.X+r2.Width <= r1.X ||
		r1.Y+r1.Height <= r2.Y || r2.Y+r2.Height <= r1.Y)
}

func rectanglesClose(r1 Rectangle, r2 Rectangle, threshold int) bool {
	return rectanglesOverlap(expand(r1, threshold), expand(r2, threshold))
}

func expand(r Rectangle, n int) Rectangle {
	return Rectangle{
		X:      r.X - n,
		Y:      r.Y - n,
		Width:  r.Width + 2*n,
		Height: r.Height + 2*n,
	}
}

func combineRectangles(r1 Rectangle, r2 Rectangle) Rectangle {
	minX := min(r1.X, r2.X)
	minY := min(r1.Y, r2.Y)
	maxX := max(r1.X+r1.Width, r2.X+r2.Width)
	maxY := max(r1.Y+r1.Height, r2.Y+r2.Height)

	return Rectangle{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

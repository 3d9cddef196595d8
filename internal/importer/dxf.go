package importer

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// Layer name prefixes that mark LINE entities as stock or required cuts.
const (
	RodLayerPrefix   = "ROD"
	PieceLayerPrefix = "PIECE"
)

// minDXFLength skips lines too short to be intentional.
const minDXFLength = 0.01

// ImportDXF imports rods and pieces from a DXF file. Every LINE on a layer
// whose name starts with ROD becomes a rod and every LINE on a PIECE layer
// becomes a piece; its length is the distance between its end points.
// Lines on other layers are skipped with a warning.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	skipped := map[string]int{}
	for _, ent := range entities {
		line, ok := ent.(*entity.Line)
		if !ok {
			continue
		}

		layer := layerName(line)
		length := lineLength(line)
		if length < minDXFLength {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate line on layer %s (%.3f mm)", layer, length))
			continue
		}

		upper := strings.ToUpper(layer)
		switch {
		case strings.HasPrefix(upper, PieceLayerPrefix):
			result.Pieces = append(result.Pieces,
				model.NewPiece(fmt.Sprintf("DXF Piece %d", len(result.Pieces)+1), length, 1))
		case strings.HasPrefix(upper, RodLayerPrefix):
			result.Rods = append(result.Rods,
				model.NewRod(fmt.Sprintf("DXF Rod %d", len(result.Rods)+1), length, 1))
		default:
			skipped[layer]++
		}
	}

	for _, layer := range slices.Sorted(maps.Keys(skipped)) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d line(s) on layer '%s'", skipped[layer], layer))
	}

	if result.Empty() {
		result.Errors = append(result.Errors, "No lines found on ROD or PIECE layers")
	}
	return result
}

func layerName(e entity.Entity) string {
	if l := e.Layer(); l != nil {
		return l.Name()
	}
	return ""
}

func lineLength(l *entity.Line) float64 {
	dx := l.End[0] - l.Start[0]
	dy := l.End[1] - l.Start[1]
	dz := l.End[2] - l.Start[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

package importer

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/piwi3910/RodCut/internal/model"
	"github.com/tidwall/gjson"
)

// ErrInvalidJob is returned when a JSON job cannot be turned into rods and pieces.
var ErrInvalidJob = errors.New("invalid job")

// Job is a cutting request read from JSON. Rods and pieces are given either
// as plain lengths or as objects with length, quantity and label. Project
// files saved by the project package have the same shape and parse as jobs.
type Job struct {
	Name      string
	Rods      []model.Rod
	Pieces    []model.Piece
	SortOrder model.SortOrder
}

// ParseJSONJob parses a job document such as
//
//	{"rods":[311.5,{"length":364.5,"quantity":2,"label":"A"}],"pieces":[227,90.5],"sort":"asc"}
//
// "rods" and "pieces" must be arrays; an empty pieces array is valid.
func ParseJSONJob(data []byte) (Job, error) {
	if !gjson.ValidBytes(data) {
		return Job{}, fmt.Errorf("%w: malformed JSON", ErrInvalidJob)
	}
	doc := gjson.ParseBytes(data)

	job := Job{Name: doc.Get("name").String()}

	rods := doc.Get("rods")
	if !rods.IsArray() {
		return Job{}, fmt.Errorf("%w: \"rods\" must be an array", ErrInvalidJob)
	}
	pieces := doc.Get("pieces")
	if pieces.Exists() && !pieces.IsArray() {
		return Job{}, fmt.Errorf("%w: \"pieces\" must be an array", ErrInvalidJob)
	}

	var err error
	rods.ForEach(func(key, v gjson.Result) bool {
		var length float64
		var qty int
		var label string
		length, qty, label, err = readItem(v)
		if err != nil {
			err = fmt.Errorf("%w: rods[%d]: %v", ErrInvalidJob, key.Int(), err)
			return false
		}
		if label == "" {
			label = fmt.Sprintf("Rod %d", len(job.Rods)+1)
		}
		job.Rods = append(job.Rods, model.NewRod(label, length, qty))
		return true
	})
	if err != nil {
		return Job{}, err
	}

	pieces.ForEach(func(key, v gjson.Result) bool {
		var length float64
		var qty int
		var label string
		length, qty, label, err = readItem(v)
		if err != nil {
			err = fmt.Errorf("%w: pieces[%d]: %v", ErrInvalidJob, key.Int(), err)
			return false
		}
		if label == "" {
			label = fmt.Sprintf("Piece %d", len(job.Pieces)+1)
		}
		job.Pieces = append(job.Pieces, model.NewPiece(label, length, qty))
		return true
	})
	if err != nil {
		return Job{}, err
	}

	sortName := doc.Get("sort").String()
	if sortName == "" {
		sortName = doc.Get("settings.sort_order").String()
	}
	order, ok := model.ParseSortOrder(sortName)
	if !ok {
		return Job{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidJob, sortName)
	}
	job.SortOrder = order

	return job, nil
}

// readItem reads a bare length or a {"length","quantity","label"} object.
func readItem(v gjson.Result) (float64, int, string, error) {
	switch {
	case v.Type == gjson.Number:
		length, err := checkLength(v.Float())
		return length, 1, "", err
	case v.IsObject():
		l := v.Get("length")
		if l.Type != gjson.Number {
			return 0, 0, "", errors.New("missing numeric length")
		}
		length, err := checkLength(l.Float())
		if err != nil {
			return 0, 0, "", err
		}
		qty := 1
		if q := v.Get("quantity"); q.Exists() {
			if q.Type != gjson.Number || q.Float() != math.Trunc(q.Float()) || q.Int() <= 0 {
				return 0, 0, "", fmt.Errorf("quantity %s must be a positive integer", q.Raw)
			}
			qty = int(q.Int())
		}
		return length, qty, v.Get("label").String(), nil
	default:
		return 0, 0, "", fmt.Errorf("unexpected value %s", v.Raw)
	}
}

// checkLength accepts zero, which the optimizer treats as a valid length.
func checkLength(l float64) (float64, error) {
	if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
		return 0, fmt.Errorf("length %v must not be negative", l)
	}
	return l, nil
}

// ImportJSON reads a JSON job or project file.
func ImportJSON(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	job, err := ParseJSONJob(data)
	if err != nil {
		return ImportResult{Errors: []string{err.Error()}}
	}
	return ImportResult{Rods: job.Rods, Pieces: job.Pieces}
}

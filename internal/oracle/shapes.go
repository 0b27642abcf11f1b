// internal/oracle/shapes.go
package oracle

import (
	"fmt"

	"github.com/tidwall/gjson"

	apperrors "github.com/Corphon/TrustLens/internal/errors"
)

// Shape identifies which known response layout a body matched
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeNested is [[{label, score}, ...]]
	ShapeNested
	// ShapeFlat is [{label, score}, ...]
	ShapeFlat
	// ShapeZeroShot is {sequence, labels: [...], scores: [...]}
	ShapeZeroShot
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	case ShapeZeroShot:
		return "zero-shot"
	default:
		return "unknown"
	}
}

// LabelScore is one classifier output entry
type LabelScore struct {
	Label string
	Score float64
}

func malformed(format string, args ...interface{}) error {
	return apperrors.NewMalformedResponseError(fmt.Sprintf(format, args...), nil)
}

func parseRoot(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, malformed("response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("error"); root.IsObject() && msg.Exists() {
		return gjson.Result{}, malformed("oracle error: %s", msg.String())
	}
	return root, nil
}

// ParseLabelScores detects the nested or flat label/score list shape.
func ParseLabelScores(body []byte) ([]LabelScore, Shape, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, ShapeUnknown, err
	}
	return labelScoresOf(root)
}

func labelScoresOf(root gjson.Result) ([]LabelScore, Shape, error) {
	if !root.IsArray() {
		return nil, ShapeUnknown, malformed("expected a list of label/score entries")
	}
	items := root.Array()
	if len(items) == 0 {
		return nil, ShapeUnknown, malformed("empty classifier response")
	}

	shape := ShapeFlat
	if items[0].IsArray() {
		shape = ShapeNested
		items = items[0].Array()
	}

	entries := make([]LabelScore, 0, len(items))
	for i, item := range items {
		label := item.Get("label")
		score := item.Get("score")
		if !item.IsObject() || label.Type != gjson.String || score.Type != gjson.Number {
			return nil, ShapeUnknown, malformed("entry %d is not a label/score pair", i)
		}
		entries = append(entries, LabelScore{Label: label.String(), Score: score.Float()})
	}
	if len(entries) == 0 {
		return nil, ShapeUnknown, malformed("no label/score entries")
	}
	return entries, shape, nil
}

// ParseZeroShot accepts the parallel labels/scores object or a label/score list.
func ParseZeroShot(body []byte) ([]LabelScore, Shape, error) {
	root, err := parseRoot(body)
	if err != nil {
		return nil, ShapeUnknown, err
	}

	if !root.IsObject() {
		return labelScoresOf(root)
	}

	labels := root.Get("labels")
	scores := root.Get("scores")
	if !labels.IsArray() || !scores.IsArray() {
		return nil, ShapeUnknown, malformed("zero-shot response lacks labels/scores")
	}
	ls, ss := labels.Array(), scores.Array()
	if len(ls) == 0 || len(ls) != len(ss) {
		return nil, ShapeUnknown, malformed("zero-shot labels/scores length mismatch (%d/%d)", len(ls), len(ss))
	}

	entries := make([]LabelScore, len(ls))
	for i := range ls {
		if ls[i].Type != gjson.String || ss[i].Type != gjson.Number {
			return nil, ShapeUnknown, malformed("zero-shot entry %d has wrong types", i)
		}
		entries[i] = LabelScore{Label: ls[i].String(), Score: ss[i].Float()}
	}
	return entries, ShapeZeroShot, nil
}

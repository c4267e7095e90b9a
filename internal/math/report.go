package math

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/drakos74/free-vis/internal/tensor"
	"github.com/sjwhitworth/golearn/evaluation"
)

// ClassReport holds the classification metrics of a single class.
type ClassReport struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report summarises the classification performance behind a confusion matrix.
// Metrics of classes without predictions or samples are NaN.
type Report struct {
	Classes        []ClassReport `json:"classes"`
	Accuracy       float64       `json:"accuracy"`
	MacroPrecision float64       `json:"macroPrecision"`
	MacroRecall    float64       `json:"macroRecall"`
}

// MarshalJSON encodes the undefined metrics as strings.
func (c ClassReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"class":     c.Class,
		"precision": JSONFloat(c.Precision),
		"recall":    JSONFloat(c.Recall),
		"f1":        JSONFloat(c.F1),
		"support":   c.Support,
	})
}

// MarshalJSON encodes the undefined metrics as strings.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"classes":        r.Classes,
		"accuracy":       JSONFloat(r.Accuracy),
		"macroPrecision": JSONFloat(r.MacroPrecision),
		"macroRecall":    JSONFloat(r.MacroRecall),
	})
}

// Evaluation converts the matrix into a golearn confusion matrix keyed by the class names.
// Without names the class index is used.
func (m Matrix) Evaluation(names ...string) (evaluation.ConfusionMatrix, error) {
	names, err := m.names(names)
	if err != nil {
		return nil, err
	}
	cm := make(evaluation.ConfusionMatrix, len(m))
	for i, row := range m {
		cm[names[i]] = make(map[string]int, len(row))
		for j, c := range row {
			cm[names[i]][names[j]] = c
		}
	}
	return cm, nil
}

// Report computes precision, recall and f1 per class.
func (m Matrix) Report(names ...string) (Report, error) {
	names, err := m.names(names)
	if err != nil {
		return Report{}, err
	}
	cm, err := m.Evaluation(names...)
	if err != nil {
		return Report{}, err
	}

	classes := make([]ClassReport, len(m))
	for i, name := range names {
		support := 0
		for _, c := range m[i] {
			support += c
		}
		classes[i] = ClassReport{
			Class:     name,
			Precision: evaluation.GetPrecision(name, cm),
			Recall:    evaluation.GetRecall(name, cm),
			F1:        evaluation.GetF1Score(name, cm),
			Support:   support,
		}
	}

	return Report{
		Classes:        classes,
		Accuracy:       evaluation.GetAccuracy(cm),
		MacroPrecision: evaluation.GetMacroPrecision(cm),
		MacroRecall:    evaluation.GetMacroRecall(cm),
	}, nil
}

// Summary is the golearn text summary of the matrix.
func (m Matrix) Summary(names ...string) (string, error) {
	cm, err := m.Evaluation(names...)
	if err != nil {
		return "", err
	}
	return evaluation.GetSummary(cm), nil
}

func (m Matrix) names(names []string) ([]string, error) {
	if len(names) == 0 {
		names = make([]string, len(m))
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		return names, nil
	}
	if len(names) != len(m) {
		return nil, fmt.Errorf("%d names for %d classes: %w", len(names), len(m), tensor.ShapeErr)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("duplicate class name '%s': %w", name, InvalidInputErr)
		}
		seen[name] = struct{}{}
	}
	return names, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// AuthStatus is the check-auth response.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
}

// User is the success body of login and register.
type User struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

// Score is one label of the ordered all_predictions mapping.
type Score struct {
	Label      string
	Confidence float64 // percent, 0-100
}

// Scores keeps all_predictions in the order the backend sent them.
type Scores []Score

// UnmarshalJSON decodes a JSON object into Scores preserving key order.
func (s *Scores) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("all_predictions: expected object, got %v", tok)
	}

	out := Scores{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("all_predictions: unexpected key %v", keyTok)
		}
		var value float64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("all_predictions[%q]: %w", label, err)
		}
		out = append(out, Score{Label: label, Confidence: value})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("all_predictions: trailing data")
	}

	*s = out
	return nil
}

// MarshalJSON writes Scores back as an object in the same order.
func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, score := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(score.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(score.Confidence)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Prediction is a validated predict response.
type Prediction struct {
	Label         string  `json:"prediction"`
	Confidence    float64 `json:"confidence"`
	SeverityLevel int     `json:"severity_level"`
	Scores        Scores  `json:"all_predictions"`
}

// confidenceSlack absorbs float noise from probability*100 on the backend.
const confidenceSlack = 1e-6

// Validate checks the fields the result view depends on.
func (p *Prediction) Validate() error {
	if p.Label == "" {
		return fmt.Errorf("missing prediction label")
	}
	if !validPercent(p.Confidence) {
		return fmt.Errorf("confidence %v outside [0,100]", p.Confidence)
	}
	if p.Scores == nil {
		return fmt.Errorf("missing all_predictions")
	}
	for _, s := range p.Scores {
		if !validPercent(s.Confidence) {
			return fmt.Errorf("confidence for %q outside [0,100]", s.Label)
		}
	}
	return nil
}

// predictResponse is the wire form of a predict body. SeverityLevel is a
// pointer so an absent field is not mistaken for grade 0.
type predictResponse struct {
	Label         string  `json:"prediction"`
	Confidence    float64 `json:"confidence"`
	SeverityLevel *int    `json:"severity_level"`
	Scores        Scores  `json:"all_predictions"`
}

// prediction converts and validates the wire form.
func (r *predictResponse) prediction() (*Prediction, error) {
	if r.SeverityLevel == nil {
		return nil, fmt.Errorf("missing severity_level")
	}
	if *r.SeverityLevel < 0 {
		return nil, fmt.Errorf("severity_level %d is negative", *r.SeverityLevel)
	}
	p := &Prediction{
		Label:         r.Label,
		Confidence:    r.Confidence,
		SeverityLevel: *r.SeverityLevel,
		Scores:        r.Scores,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func validPercent(v float64) bool {
	return v >= -confidenceSlack && v <= 100+confidenceSlack
}

// HistoryEntry is one past prediction.
type HistoryEntry struct {
	Label      string
	Confidence float64
	Timestamp  time.Time
}

type historyEntryJSON struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Date       string  `json:"date"`
}

type historyResponse struct {
	History []historyEntryJSON `json:"history"`
}

// errorBody is the best-effort failure body.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

type AnswerKind int

const (
	AnswerEmpty AnswerKind = iota
	AnswerText
	AnswerNumber
	AnswerBool
)

// AnswerValue holds a submitted value: text, number or boolean.
// On the wire it is the bare JSON scalar.
type AnswerValue struct {
	kind    AnswerKind
	text    string
	number  float64
	boolean bool
}

func TextAnswer(s string) AnswerValue    { return AnswerValue{kind: AnswerText, text: s} }
func NumberAnswer(n float64) AnswerValue { return AnswerValue{kind: AnswerNumber, number: n} }
func BoolAnswer(b bool) AnswerValue      { return AnswerValue{kind: AnswerBool, boolean: b} }

func (v AnswerValue) Kind() AnswerKind { return v.kind }

// IsEmpty is true for missing values and blank text.
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case AnswerEmpty:
		return true
	case AnswerText:
		return strings.TrimSpace(v.text) == ""
	}
	return false
}

func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerText:
		return v.text
	case AnswerNumber:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case AnswerBool:
		if v.boolean {
			return "sim"
		}
		return "nao"
	}
	return ""
}

// Number returns the numeric reading of the value. Text is parsed, accepting a
// decimal comma. NaN and infinities are not numbers here.
func (v AnswerValue) Number() (float64, bool) {
	var n float64
	switch v.kind {
	case AnswerNumber:
		n = v.number
	case AnswerText:
		s := strings.ReplaceAll(strings.TrimSpace(v.text), ",", ".")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// YesNo reads booleans and the sim/nao strings used by the public form.
func (v AnswerValue) YesNo() (bool, bool) {
	switch v.kind {
	case AnswerBool:
		return v.boolean, true
	case AnswerText:
		switch strings.ToLower(strings.TrimSpace(v.text)) {
		case "sim", "true":
			return true, true
		case "nao", "não", "false":
			return false, true
		}
	}
	return false, false
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerText:
		return json.Marshal(v.text)
	case AnswerNumber:
		return json.Marshal(v.number)
	case AnswerBool:
		return json.Marshal(v.boolean)
	}
	return []byte("null"), nil
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolAnswer(b)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("answer value must be text, number or boolean")
		}
		*v = NumberAnswer(n)
	}
	return nil
}

type Answer struct {
	QuestionID string      `json:"question_id"`
	Value      AnswerValue `json:"value"`
}

// AnswerSet indexes answers by question id. Later entries win.
func AnswerSet(answers []Answer) map[string]AnswerValue {
	set := make(map[string]AnswerValue, len(answers))
	for _, a := range answers {
		set[a.QuestionID] = a.Value
	}
	return set
}

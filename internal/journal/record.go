// Package journal persists the sequence of calculator commands so a session
// can be replayed later.
//
// Each record is one JSON object:
//
//	{"kind":"compute","op":"+","operand":100,"ts":"2024-05-01T10:00:00Z"}
//	{"kind":"undo","levels":4,"ts":"..."}
//	{"kind":"group_begin","name":"double","ts":"..."}
//
// Records are kept in order in a Store; Replay feeds them back through a
// calculator to rebuild both the value and the history cursor.
package journal

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/undocalc/internal/engine/accumulator"
)

// Kind identifies the calculator action a record captures.
type Kind string

const (
	KindCompute Kind = "compute"
	KindUndo    Kind = "undo"
	KindRedo    Kind = "redo"
	KindClear   Kind = "clear"

	KindGroupBegin  Kind = "group_begin"
	KindGroupEnd    Kind = "group_end"
	KindGroupCancel Kind = "group_cancel"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCompute, KindUndo, KindRedo, KindClear,
		KindGroupBegin, KindGroupEnd, KindGroupCancel:
		return true
	}
	return false
}

// Record is one journaled action.
type Record struct {
	Kind Kind

	// Op and Operand are set for KindCompute.
	Op      accumulator.Operator
	Operand int64

	// Levels is set for KindUndo and KindRedo.
	Levels int

	// Name is set for KindGroupBegin.
	Name string

	Time time.Time
}

// ComputeRecord builds a compute record stamped with the current time.
func ComputeRecord(op accumulator.Operator, operand int64) Record {
	return Record{Kind: KindCompute, Op: op, Operand: operand, Time: time.Now().UTC()}
}

// UndoRecord builds an undo record stamped with the current time.
func UndoRecord(levels int) Record {
	return Record{Kind: KindUndo, Levels: levels, Time: time.Now().UTC()}
}

// RedoRecord builds a redo record stamped with the current time.
func RedoRecord(levels int) Record {
	return Record{Kind: KindRedo, Levels: levels, Time: time.Now().UTC()}
}

// GroupRecord builds a group boundary record of kind k.
func GroupRecord(k Kind, name string) Record {
	return Record{Kind: k, Name: name, Time: time.Now().UTC()}
}

// ClearRecord builds a clear record stamped with the current time.
func ClearRecord() Record {
	return Record{Kind: KindClear, Time: time.Now().UTC()}
}

// Encode renders r as a single-line JSON object.
func Encode(r Record) (string, error) {
	if !r.Kind.Valid() {
		return "", fmt.Errorf("%w: kind %q", ErrInvalidRecord, r.Kind)
	}

	doc, err := sjson.Set("", "kind", string(r.Kind))
	if err != nil {
		return "", err
	}

	switch r.Kind {
	case KindCompute:
		if !r.Op.Valid() {
			return "", fmt.Errorf("%w: %v", accumulator.ErrInvalidOperator, r.Op)
		}
		if doc, err = sjson.Set(doc, "op", r.Op.String()); err != nil {
			return "", err
		}
		if doc, err = sjson.Set(doc, "operand", r.Operand); err != nil {
			return "", err
		}
	case KindUndo, KindRedo:
		if doc, err = sjson.Set(doc, "levels", r.Levels); err != nil {
			return "", err
		}
	case KindGroupBegin:
		if doc, err = sjson.Set(doc, "name", r.Name); err != nil {
			return "", err
		}
	}

	if !r.Time.IsZero() {
		if doc, err = sjson.Set(doc, "ts", r.Time.Format(time.RFC3339Nano)); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// Decode parses a record produced by Encode.
func Decode(s string) (Record, error) {
	if !gjson.Valid(s) {
		return Record{}, fmt.Errorf("%w: malformed JSON", ErrInvalidRecord)
	}

	fields := gjson.GetMany(s, "kind", "op", "operand", "levels", "ts", "name")
	r := Record{Kind: Kind(fields[0].String())}
	if !r.Kind.Valid() {
		return Record{}, fmt.Errorf("%w: kind %q", ErrInvalidRecord, fields[0].String())
	}

	switch r.Kind {
	case KindCompute:
		op, err := accumulator.ParseOperator(fields[1].String())
		if err != nil {
			return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		if fields[2].Type != gjson.Number {
			return Record{}, fmt.Errorf("%w: operand missing", ErrInvalidRecord)
		}
		r.Op = op
		r.Operand = fields[2].Int()
	case KindUndo, KindRedo:
		if fields[3].Type != gjson.Number {
			return Record{}, fmt.Errorf("%w: levels missing", ErrInvalidRecord)
		}
		r.Levels = int(fields[3].Int())
	case KindGroupBegin:
		r.Name = fields[5].String()
	}

	if ts := fields[4].String(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Record{}, fmt.Errorf("%w: timestamp: %w", ErrInvalidRecord, err)
		}
		r.Time = t
	}
	return r, nil
}

// Package binner is the sink that receives completed photons: the detector
// core's "Binner / history file" exposed interface.
package binner

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/simset/detcore/internal/photon"
)

// Record is the completed-photon payload delivered to the sink: detected
// location, detected crystal (block detectors only), (possibly blurred)
// energy and travel distance, the interaction list, and weights.
type Record struct {
	RunSeq          uint64
	DecayID         uint64
	Flavor          photon.Flavor
	DetectedAt      [3]float64
	DetectedBlock   photon.Index
	EnergyKeV       float64
	TravelDistance  float64
	Weight          float64
	DecayWeight     float64
	Interactions    []photon.Interaction
	FromBlockShape  bool
}

// Sink is the contract the detector driver emits completed photons to. A
// sequence number is required so a serialized stream preserves emission
// order even if photons were produced by parallel workers.
type Sink interface {
	Emit(rec Record) error
}

// SliceSink is an in-memory Sink, useful for tests and for forced-
// interaction scenarios.
type SliceSink struct {
	Records []Record
}

func NewSliceSink() *SliceSink { return &SliceSink{} }

func (s *SliceSink) Emit(rec Record) error {
	s.Records = append(s.Records, rec)
	return nil
}

// StreamWriter serializes records to a fixed-width binary history-file
// stream. Records are written in the order Emit is called; callers running
// multiple workers must serialize calls by RunSeq themselves.
type StreamWriter struct {
	w io.Writer
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

func (s *StreamWriter) Emit(rec Record) error {
	var buf [8 + 8 + 1 + 3*8 + 4 + 8 + 8 + 8 + 8 + 4]byte
	off := 0
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[off:], v)
		off += 8
	}
	putF64 := func(v float64) {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
		off += 8
	}

	putU64(rec.RunSeq)
	putU64(rec.DecayID)
	buf[off] = byte(rec.Flavor)
	off++
	putF64(rec.DetectedAt[0])
	putF64(rec.DetectedAt[1])
	putF64(rec.DetectedAt[2])
	binary.LittleEndian.PutUint32(buf[off:], uint32(rec.DetectedBlock.Ring))
	off += 4
	putF64(rec.EnergyKeV)
	putF64(rec.TravelDistance)
	putF64(rec.Weight)
	putF64(rec.DecayWeight)
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(rec.Interactions)))
	off += 4

	if _, err := s.w.Write(buf[:off]); err != nil {
		return err
	}
	return nil
}

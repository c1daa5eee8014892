package storage

import (
	"github.com/san-kum/sandbox/internal/physics"
	"github.com/san-kum/sandbox/internal/sandbox"
)

// FieldsPerObject is the number of recorded values per object and frame:
// position x, y, z then quaternion x, y, z, w.
const FieldsPerObject = 7

type ObjectInfo struct {
	ID    int       `json:"id"`
	Shape string    `json:"shape"`
	Dims  []float64 `json:"dims"`
	Frame uint64    `json:"first_frame"`
}

// Sample is one recorded frame. Values holds FieldsPerObject entries for
// each object registered at that frame, in registry order.
type Sample struct {
	Frame  uint64
	Time   float64
	Values []float64
}

// Recorder is a frame observer that samples every registered object.
// Objects spawned later simply add columns from their first frame on.
type Recorder struct {
	Stride  uint64
	Objects []ObjectInfo
	Samples []Sample
}

func NewRecorder(stride uint64) *Recorder {
	if stride == 0 {
		stride = 1
	}
	return &Recorder{
		Stride:  stride,
		Objects: make([]ObjectInfo, 0),
		Samples: make([]Sample, 0),
	}
}

func (r *Recorder) OnFrame(frame uint64, t float64, reg *sandbox.Registry) {
	for i := len(r.Objects); i < reg.Len(); i++ {
		r.Objects = append(r.Objects, describe(reg.At(i).Body, frame))
	}
	if frame%r.Stride != 0 {
		return
	}

	values := make([]float64, 0, reg.Len()*FieldsPerObject)
	reg.ForEach(func(_ int, p sandbox.ObjectPair) {
		pos, q := p.Body.Position, p.Body.Quaternion
		values = append(values, pos[0], pos[1], pos[2], q.V[0], q.V[1], q.V[2], q.W)
	})
	r.Samples = append(r.Samples, Sample{Frame: frame, Time: t, Values: values})
}

func describe(b *physics.Body, frame uint64) ObjectInfo {
	info := ObjectInfo{ID: b.ID, Frame: frame}
	switch s := b.Shape.(type) {
	case *physics.Sphere:
		info.Shape = "sphere"
		info.Dims = []float64{s.Radius}
	case *physics.Box:
		info.Shape = "box"
		info.Dims = []float64{2 * s.HalfExtents[0], 2 * s.HalfExtents[1], 2 * s.HalfExtents[2]}
	}
	return info
}

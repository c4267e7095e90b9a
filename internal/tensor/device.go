package tensor

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/drakos74/free-vis/internal/metrics"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Device emulates an accelerator with its own memory and a single command stream.
// Reductions run on the calling goroutine, host transfers are queued on the stream.
type Device struct {
	name    string
	stream  chan func()
	quit    chan struct{}
	wg      *sync.WaitGroup
	closing *sync.RWMutex
	closed  bool
	mutex   *sync.RWMutex
	tensors map[uuid.UUID]int
}

// NewDevice creates a new device and starts its command stream.
func NewDevice(name string) *Device {
	d := &Device{
		name:    name,
		stream:  make(chan func()),
		quit:    make(chan struct{}),
		wg:      new(sync.WaitGroup),
		closing: new(sync.RWMutex),
		mutex:   new(sync.RWMutex),
		tensors: make(map[uuid.UUID]int),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Device) run() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.stream:
			job()
		case <-d.quit:
			return
		}
	}
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// Close stops the command stream. Tensors of the device can no longer be materialized.
func (d *Device) Close() {
	d.closing.Lock()
	if d.closed {
		d.closing.Unlock()
		return
	}
	d.closed = true
	d.closing.Unlock()

	close(d.quit)
	d.wg.Wait()
	if live := d.Live(); live > 0 {
		log.Warn().Str("device", d.name).Int("live", live).Msg("closing device with live tensors")
	}
}

// Live returns the number of tensors allocated and not yet disposed.
func (d *Device) Live() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.tensors)
}

// Bytes returns the memory held by live tensors.
func (d *Device) Bytes() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	b := 0
	for _, n := range d.tensors {
		b += n
	}
	return b
}

// Tensor uploads the values to the device with the given shape.
// A nil shape creates a rank-1 tensor.
func (d *Device) Tensor(values []float64, shape Shape, dtype DType) (Tensor, error) {
	if shape == nil {
		shape = Shape{len(values)}
	}
	if err := shape.validate(); err != nil {
		return nil, err
	}
	if shape.Size() != len(values) {
		return nil, fmt.Errorf("%d values do not fit shape %v: %w", len(values), shape, ShapeErr)
	}
	t, err := d.upload(xmath.Vector(values).Op(cast(dtype)), append(Shape{}, shape...), dtype)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Tensor1D uploads the values as a rank-1 tensor.
func (d *Device) Tensor1D(values []float64, dtype DType) (Tensor, error) {
	return d.Tensor(values, nil, dtype)
}

// FromMatrix uploads a matrix as a rank-2 tensor.
func (d *Device) FromMatrix(m mat.Matrix, dtype DType) (Tensor, error) {
	r, c := m.Dims()
	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		values = append(values, mat.Row(nil, i, m)...)
	}
	return d.Tensor(values, Shape{r, c}, dtype)
}

func (d *Device) upload(values xmath.Vector, shape Shape, dtype DType) (*dense, error) {
	d.closing.RLock()
	defer d.closing.RUnlock()
	if d.closed {
		return nil, fmt.Errorf("could not allocate on '%s': %w", d.name, ClosedErr)
	}
	t := &dense{
		id:     uuid.New(),
		device: d,
		dtype:  dtype,
		shape:  shape,
		values: values,
	}
	d.mutex.Lock()
	d.tensors[t.id] = len(values) * dtype.Bytes()
	live := len(d.tensors)
	d.mutex.Unlock()
	metrics.Observer.Tensors(d.name, live)
	return t, nil
}

func (d *Device) release(id uuid.UUID) {
	d.mutex.Lock()
	delete(d.tensors, id)
	live := len(d.tensors)
	d.mutex.Unlock()
	metrics.Observer.Tensors(d.name, live)
}

func (d *Device) scalar(v float64, dtype DType) (Tensor, error) {
	t, err := d.upload(xmath.Vector{cast(dtype)(v)}, Shape{}, dtype)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// submit queues the job on the command stream.
func (d *Device) submit(ctx context.Context, job func()) error {
	d.closing.RLock()
	defer d.closing.RUnlock()
	if d.closed {
		return fmt.Errorf("could not submit to '%s': %w", d.name, ClosedErr)
	}
	select {
	case d.stream <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cast rounds a value to the precision of the dtype.
func cast(dtype DType) xmath.Op {
	switch dtype {
	case Float32:
		return func(x float64) float64 {
			return float64(float32(x))
		}
	case Int32:
		return func(x float64) float64 {
			if math.IsNaN(x) {
				return 0
			}
			return math.Max(math.MinInt32, math.Min(math.MaxInt32, math.Trunc(x)))
		}
	}
	return func(x float64) float64 {
		return x
	}
}

type dense struct {
	id       uuid.UUID
	device   *Device
	dtype    DType
	shape    Shape
	values   xmath.Vector
	disposed int32
}

func (t *dense) ID() uuid.UUID {
	return t.id
}

func (t *dense) DType() DType {
	return t.dtype
}

func (t *dense) Shape() Shape {
	return append(Shape{}, t.shape...)
}

func (t *dense) String() string {
	return fmt.Sprintf("%s%v(%s)", t.dtype, t.shape, t.id)
}

func (t *dense) check() error {
	if atomic.LoadInt32(&t.disposed) == 1 {
		return fmt.Errorf("%v: %w", t, DisposedErr)
	}
	return nil
}

func (t *dense) Min() (Tensor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if len(t.values) == 0 {
		return t.device.scalar(math.Inf(1), t.dtype)
	}
	return t.device.scalar(floats.Min(t.values), t.dtype)
}

func (t *dense) Max() (Tensor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	if len(t.values) == 0 {
		return t.device.scalar(math.Inf(-1), t.dtype)
	}
	return t.device.scalar(floats.Max(t.values), t.dtype)
}

func (t *dense) CountEqual(v float64) (Tensor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	n := floats.Count(func(x float64) bool {
		return x == v
	}, t.values)
	return t.device.scalar(float64(n), Int32)
}

func (t *dense) Data(ctx context.Context) (xmath.Vector, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := make(chan xmath.Vector, 1)
	err := t.device.submit(ctx, func() {
		out <- t.values.Copy()
	})
	if err != nil {
		return nil, err
	}
	select {
	case v := <-out:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *dense) Dispose() {
	if atomic.CompareAndSwapInt32(&t.disposed, 0, 1) {
		t.device.release(t.id)
	}
}

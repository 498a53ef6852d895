// Package cu implements the gradient descent update step on CUDA.
package cu

import "fmt"

import "github.com/neurlang/engine/nn"
import "github.com/neurlang/engine/optim/cu/kernel"

import "gorgonia.org/cu"
import "unsafe"

// SGD applies plain gradient descent on the GPU. Each Step stages the
// parameters host-side, runs the axpy kernel over weights and gradients
// and copies the result back. Momentum and weight decay stay CPU
// concerns; use the optim package when you need them.
type SGD struct {
	LR float64

	ctx      *cu.CUContext
	weights  *cu.DevicePtr
	grads    *cu.DevicePtr
	fn       *cu.Function
	stream   *cu.Stream
	capacity int64
	staging  []float64
}

// NewSGD initializes device 0, loads the update kernel and allocates the
// initial device buffers.
func NewSGD(lr float64) (*SGD, error) {
	s := &SGD{LR: lr}
	if err := s.initCUDA(1 << 16); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SGD) initCUDA(capacity int64) error {

	// Initialize CUDA
	device, err := cu.GetDevice(0)
	if err != nil {
		fmt.Printf("Failed to get device: %v\n", err)
		return err
	}
	ctx, err := device.MakeContext(cu.SchedAuto)
	if err != nil {
		fmt.Printf("Failed to create context: %v\n", err)
		return err
	}
	// Lock context for thread safety
	err = ctx.Lock()
	if err != nil {
		fmt.Printf("Failed to lock context: %v\n", err)
		return err
	}
	size := capacity * int64(unsafe.Sizeof(float64(0)))
	dWeights, err := cu.MemAlloc(size)
	if err != nil {
		fmt.Printf("Failed to allocate device memory for weights: %v\n", err)
		return err
	}
	dGrads, err := cu.MemAlloc(size)
	if err != nil {
		fmt.Printf("Failed to allocate device memory for gradients: %v\n", err)
		return err
	}
	mod, err := cu.LoadData(kernel.PTXaxpyCUDA)
	if err != nil {
		fmt.Printf("Failed to load module: %v\n", err)
		return err
	}
	fn, err := mod.Function("axpy")
	if err != nil {
		fmt.Printf("Failed to get function: %v\n", err)
		return err
	}
	stream, err := cu.MakeStream(cu.DefaultStream)
	if err != nil {
		fmt.Printf("Failed to make stream: %v\n", err)
		return err
	}
	s.ctx = &ctx
	s.weights = &dWeights
	s.grads = &dGrads
	s.fn = &fn
	s.stream = &stream
	s.capacity = capacity
	return nil
}

// grow the device buffers when a parameter outgrows them
func (s *SGD) ensure(elems int64) error {
	if elems <= s.capacity {
		return nil
	}
	cu.MemFree(*s.weights)
	cu.MemFree(*s.grads)
	size := elems * int64(unsafe.Sizeof(float64(0)))
	dWeights, err := cu.MemAlloc(size)
	if err != nil {
		return err
	}
	dGrads, err := cu.MemAlloc(size)
	if err != nil {
		return err
	}
	s.weights = &dWeights
	s.grads = &dGrads
	s.capacity = elems
	return nil
}

func (s *SGD) Step(params []*nn.Param) error {
	if s.ctx == nil {
		return fmt.Errorf("cuda optimizer used after Close")
	}
	if err := cu.SetCurrentContext(*s.ctx); err != nil {
		return err
	}
	alpha := -s.LR
	for _, p := range params {
		value := p.Value.RawMatrix()
		grad := p.Grad.RawMatrix()
		n := value.Rows * value.Cols
		if n == 0 {
			continue
		}
		if err := s.ensure(int64(n)); err != nil {
			return err
		}
		if cap(s.staging) < 2*n {
			s.staging = make([]float64, 2*n)
		}
		w := s.staging[:n]
		g := s.staging[n : 2*n]
		idx := 0
		for r := 0; r < value.Rows; r++ {
			copy(w[idx:], value.Data[r*value.Stride:r*value.Stride+value.Cols])
			copy(g[idx:], grad.Data[r*grad.Stride:r*grad.Stride+grad.Cols])
			idx += value.Cols
		}

		bytes := int64(n) * int64(unsafe.Sizeof(float64(0)))
		if err := cu.MemcpyHtoD(*s.weights, unsafe.Pointer(&w[0]), bytes); err != nil {
			return err
		}
		if err := cu.MemcpyHtoD(*s.grads, unsafe.Pointer(&g[0]), bytes); err != nil {
			return err
		}
		count := uint32(n)
		args := []unsafe.Pointer{
			unsafe.Pointer(s.weights),
			unsafe.Pointer(s.grads),
			unsafe.Pointer(&alpha),
			unsafe.Pointer(&count),
		}
		blocks := (n + 255) / 256
		if err := s.fn.LaunchAndSync(blocks, 1, 1, 256, 1, 1, 0, *s.stream, args); err != nil {
			return err
		}
		if err := cu.MemcpyDtoH(unsafe.Pointer(&w[0]), *s.weights, bytes); err != nil {
			return err
		}

		idx = 0
		for r := 0; r < value.Rows; r++ {
			copy(value.Data[r*value.Stride:r*value.Stride+value.Cols], w[idx:idx+value.Cols])
			idx += value.Cols
		}
	}
	return nil
}

// Close releases the device buffers and the context. The optimizer is
// unusable afterwards.
func (s *SGD) Close() {
	s.fn = nil
	s.stream = nil
	if s.weights != nil {
		cu.MemFree(*s.weights)
		s.weights = nil
	}
	if s.grads != nil {
		cu.MemFree(*s.grads)
		s.grads = nil
	}
	if s.ctx != nil {
		s.ctx.Unlock()
		s.ctx.Destroy()
		s.ctx = nil
	}
}

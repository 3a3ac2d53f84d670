package cpu

import (
	"fmt"

	"github.com/born-ml/wrn/internal/tensor"
)

// AvgPool2D averages each pooling window.
//
// With Same padding the window is clipped to the input and the mean is
// taken over the cells that fall inside it, so padding never dilutes the
// average.
func (cpu *CPUBackend) AvgPool2D(x *tensor.RawTensor, p tensor.Pool2DParams) *tensor.RawTensor {
	n, img := p.Format.BatchImageOf(x.Shape())
	winH, err := tensor.ResolveWindow(img.H, p.Size[0], p.Strides[0], p.Padding)
	if err != nil {
		panic(fmt.Sprintf("avgpool2d: height: %v", err))
	}
	winW, err := tensor.ResolveWindow(img.W, p.Size[1], p.Strides[1], p.Padding)
	if err != nil {
		panic(fmt.Sprintf("avgpool2d: width: %v", err))
	}

	outImg := tensor.Image{H: winH.Out, W: winW.Out, C: img.C}
	out := tensor.MustRaw(p.Format.Shape(outImg).WithBatch(n))
	src, dst := x.Data(), out.Data()

	cpu.forBatch(n, img.C, func(b, c int) {
		for oh := 0; oh < outImg.H; oh++ {
			h0 := max(oh*p.Strides[0]-winH.Before, 0)
			h1 := min(oh*p.Strides[0]-winH.Before+p.Size[0], img.H)
			for ow := 0; ow < outImg.W; ow++ {
				w0 := max(ow*p.Strides[1]-winW.Before, 0)
				w1 := min(ow*p.Strides[1]-winW.Before+p.Size[1], img.W)

				var sum float32
				for h := h0; h < h1; h++ {
					for w := w0; w < w1; w++ {
						sum += src[p.Format.Index(img, b, c, h, w)]
					}
				}
				cells := (h1 - h0) * (w1 - w0)
				dst[p.Format.Index(outImg, b, c, oh, ow)] = sum / float32(cells)
			}
		}
	})
	return out
}

// GlobalAvgPool2D averages every channel plane: [N, ...] -> [N, C].
func (cpu *CPUBackend) GlobalAvgPool2D(x *tensor.RawTensor, format tensor.DataFormat) *tensor.RawTensor {
	n, img := format.BatchImageOf(x.Shape())
	out := tensor.MustRaw(tensor.Shape{n, img.C})
	src, dst := x.Data(), out.Data()
	plane := float32(img.H * img.W)

	cpu.forEach(n, func(b int) {
		for c := 0; c < img.C; c++ {
			var sum float32
			for h := 0; h < img.H; h++ {
				for w := 0; w < img.W; w++ {
					sum += src[format.Index(img, b, c, h, w)]
				}
			}
			dst[b*img.C+c] = sum / plane
		}
	})
	return out
}

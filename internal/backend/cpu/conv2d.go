package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/wrn/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [N, C_in, H, W] (ChannelsFirst) or [N, H, W, C_in] (ChannelsLast)
// Kernel shape: [C_out, C_in, K_h, K_w] for both formats
// Output shape: the input layout with C_out channels and the resolved
// spatial size (see tensor.ResolveWindow).
//
// Algorithm: per sample
//  1. Im2col: patches -> col [H_out*W_out, C_in*K_h*K_w]
//  2. GEMM against the kernel viewed as [C_out, C_in*K_h*K_w]:
//     ChannelsFirst: out = kernel @ col.T  -> [C_out, H_out*W_out]
//     ChannelsLast:  out = col @ kernel.T  -> [H_out*W_out, C_out]
//
// Both products land directly in the output layout, so no reshuffle pass
// is needed. Samples are processed in parallel.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, p tensor.Conv2DParams) *tensor.RawTensor {
	kernelShape := kernel.Shape()
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	n, img := p.Format.BatchImageOf(input.Shape())

	cOut, cInK, kh, kw := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]
	if img.C != cInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", img.C, cInK))
	}

	winH, err := tensor.ResolveWindow(img.H, kh, p.Strides[0], p.Padding)
	if err != nil {
		panic(fmt.Sprintf("conv2d: height: %v", err))
	}
	winW, err := tensor.ResolveWindow(img.W, kw, p.Strides[1], p.Padding)
	if err != nil {
		panic(fmt.Sprintf("conv2d: width: %v", err))
	}

	outImg := tensor.Image{H: winH.Out, W: winW.Out, C: cOut}
	output := tensor.MustRaw(p.Format.Shape(outImg).WithBatch(n))

	positions := outImg.H * outImg.W
	colWidth := img.C * kh * kw
	sampleOut := cOut * positions

	kernelMat := blas32.General{Rows: cOut, Cols: colWidth, Stride: colWidth, Data: kernel.Data()}
	inputData := input.Data()
	outputData := output.Data()

	cpu.forEach(n, func(b int) {
		col := make([]float32, positions*colWidth)
		im2col(col, inputData, b, img, p.Format, kh, kw, p.Strides, winH, winW)

		colMat := blas32.General{Rows: positions, Cols: colWidth, Stride: colWidth, Data: col}
		dst := outputData[b*sampleOut : (b+1)*sampleOut]

		if p.Format == tensor.ChannelsFirst {
			outMat := blas32.General{Rows: cOut, Cols: positions, Stride: positions, Data: dst}
			blas32.Gemm(blas.NoTrans, blas.Trans, 1, kernelMat, colMat, 0, outMat)
			return
		}
		outMat := blas32.General{Rows: positions, Cols: cOut, Stride: cOut, Data: dst}
		blas32.Gemm(blas.NoTrans, blas.Trans, 1, colMat, kernelMat, 0, outMat)
	})

	return output
}

// im2col fills col [H_out*W_out, C*K_h*K_w] with the patches of sample b.
// Out-of-bounds cells (padding) stay zero.
func im2col(col, input []float32, b int, img tensor.Image, format tensor.DataFormat,
	kh, kw int, strides [2]int, winH, winW tensor.Window,
) {
	colWidth := img.C * kh * kw
	row := 0
	for oh := 0; oh < winH.Out; oh++ {
		hStart := oh*strides[0] - winH.Before
		for ow := 0; ow < winW.Out; ow++ {
			wStart := ow*strides[1] - winW.Before
			idx := row * colWidth
			for c := 0; c < img.C; c++ {
				for i := 0; i < kh; i++ {
					h := hStart + i
					for j := 0; j < kw; j++ {
						w := wStart + j
						if h >= 0 && h < img.H && w >= 0 && w < img.W {
							col[idx] = input[format.Index(img, b, c, h, w)]
						}
						idx++
					}
				}
			}
			row++
		}
	}
}

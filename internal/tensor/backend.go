package tensor

// Conv2DParams describes a 2D convolution on a batched image tensor.
type Conv2DParams struct {
	Format  DataFormat
	Strides [2]int
	Padding Padding
}

// Pool2DParams describes a 2D pooling window on a batched image tensor.
type Pool2DParams struct {
	Format  DataFormat
	Size    [2]int
	Strides [2]int
	Padding Padding
}

// Backend defines the interface that compute backends implement.
// Backends handle the actual computation for layer forward passes.
//
// Shapes are validated by the graph before execution; implementations
// may panic on inputs that violate their documented shapes.
type Backend interface {
	// Conv2D convolves a batched image with kernel [C_out, C_in, K_h, K_w].
	Conv2D(input, kernel *RawTensor, p Conv2DParams) *RawTensor

	// BatchNorm normalizes along the channel axis of format:
	// y = gamma * (x - mean) / sqrt(variance + eps) + beta.
	// Inputs that are not 4D are treated as [N, C].
	BatchNorm(x, mean, variance, gamma, beta *RawTensor, eps float32, format DataFormat) *RawTensor

	// Moments returns per-channel batch mean and (biased) variance.
	Moments(x *RawTensor, format DataFormat) (mean, variance *RawTensor)

	// Element-wise operations.
	Add(a, b *RawTensor) *RawTensor
	BiasAdd(x, bias *RawTensor, format DataFormat) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Softmax normalizes the last axis.
	Softmax(x *RawTensor) *RawTensor

	// Dropout zeroes elements where mask[i] < rate and scales the rest
	// by 1/(1-rate). mask holds uniform samples in [0, 1).
	Dropout(x *RawTensor, mask []float32, rate float32) *RawTensor

	// Pooling.
	AvgPool2D(x *RawTensor, p Pool2DParams) *RawTensor
	GlobalAvgPool2D(x *RawTensor, format DataFormat) *RawTensor

	// Dense computes x @ weight.T + bias for x [N, in], weight [out, in].
	// bias may be nil.
	Dense(x, weight, bias *RawTensor) *RawTensor

	// Metadata
	Name() string
}

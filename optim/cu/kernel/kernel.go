// Package kernel holds the PTX source for the GPU update step.
package kernel

// PTXaxpyCUDA is a double precision y[i] += alpha * x[i] kernel, one
// element per thread. With y the weights, x the gradients and alpha the
// negated learning rate it is exactly the plain SGD update.
const PTXaxpyCUDA = `
.version 6.0
.target sm_52
.address_size 64

.visible .entry axpy(
	.param .u64 yptr,
	.param .u64 xptr,
	.param .f64 alpha,
	.param .u32 n
)
{
	.reg .pred %p<2>;
	.reg .b32 %r<6>;
	.reg .f64 %fd<4>;
	.reg .b64 %rd<8>;

	ld.param.u64 %rd1, [yptr];
	ld.param.u64 %rd2, [xptr];
	ld.param.f64 %fd1, [alpha];
	ld.param.u32 %r2, [n];
	mov.u32 %r3, %ctaid.x;
	mov.u32 %r4, %ntid.x;
	mov.u32 %r5, %tid.x;
	mad.lo.s32 %r1, %r3, %r4, %r5;
	setp.ge.u32 %p1, %r1, %r2;
	@%p1 bra DONE;
	cvta.to.global.u64 %rd3, %rd1;
	cvta.to.global.u64 %rd4, %rd2;
	mul.wide.u32 %rd5, %r1, 8;
	add.s64 %rd6, %rd3, %rd5;
	add.s64 %rd7, %rd4, %rd5;
	ld.global.f64 %fd2, [%rd7];
	ld.global.f64 %fd3, [%rd6];
	fma.rn.f64 %fd3, %fd1, %fd2, %fd3;
	st.global.f64 [%rd6], %fd3;
DONE:
	ret;
}
`

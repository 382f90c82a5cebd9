// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "github.com/pkg/errors"

// PreferredSurfaceFormat is used whenever the surface offers it.
var PreferredSurfaceFormat = SurfaceFormat{
	Format:     FormatB8G8R8A8Unorm,
	ColorSpace: ColorSpaceSrgbNonlinear,
}

// DepthFormatCandidates lists depth formats in order of preference.
var DepthFormatCandidates = []Format{
	FormatD32Sfloat,
	FormatD32SfloatS8Uint,
	FormatD24UnormS8Uint,
	FormatD16Unorm,
}

// ErrNoFormat is returned when a surface reports no formats at all.
var ErrNoFormat = errors.New("no surface formats available")

// ChooseSurfaceFormat picks the preferred format if the surface offers it
// or places no restriction, otherwise the first one offered.
func ChooseSurfaceFormat(available []SurfaceFormat) (SurfaceFormat, error) {
	if len(available) == 0 {
		return SurfaceFormat{}, ErrNoFormat
	}
	if len(available) == 1 && available[0].Format == FormatUndefined {
		return PreferredSurfaceFormat, nil
	}
	for _, f := range available {
		if f == PreferredSurfaceFormat {
			return f, nil
		}
	}
	return available[0], nil
}

// ChoosePresentMode returns the first mode of preference that is available.
// FIFO is always supported and is the fallback.
func ChoosePresentMode(available, preference []PresentMode) PresentMode {
	for _, want := range preference {
		for _, have := range available {
			if want == have {
				return want
			}
		}
	}
	return PresentModeFifo
}

// ChooseExtent clamps the requested size into the bounds of the surface.
func ChooseExtent(caps SurfaceCapabilities, width, height uint32) Extent2D {
	return Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image above the minimum so that acquiring
// never waits on the presentation engine. A maximum of zero means unbounded.
func ChooseImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// ChooseCompositeAlpha returns the first supported mode, opaque first.
func ChooseCompositeAlpha(supported CompositeAlpha) CompositeAlpha {
	for _, mode := range []CompositeAlpha{
		CompositeAlphaOpaque,
		CompositeAlphaPreMultiplied,
		CompositeAlphaPostMultiplied,
		CompositeAlphaInherit,
	} {
		if supported&mode != 0 {
			return mode
		}
	}
	return CompositeAlphaOpaque
}

// ChoosePreTransform prefers the identity transform.
func ChoosePreTransform(caps SurfaceCapabilities) SurfaceTransform {
	if caps.SupportedTransforms&SurfaceTransformIdentity != 0 {
		return SurfaceTransformIdentity
	}
	return caps.CurrentTransform
}

// ChooseDepthFormat returns the first candidate the adapter supports.
func ChooseDepthFormat(candidates []Format, supported func(Format) bool) (Format, error) {
	for _, f := range candidates {
		if supported(f) {
			return f, nil
		}
	}
	return FormatUndefined, errors.New("no supported depth format")
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaders holds the GLSL sources of the built in programs.
// Compiled SPIR-V is read from this directory at run time.
package shaders

//go:generate glslangValidator -V triangle.vert -o triangle.vert.spv
//go:generate glslangValidator -V triangle.frag -o triangle.frag.spv

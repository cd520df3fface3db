package model

import (
	"github.com/Faultbox/fmv/internal/engine/shader"
	"github.com/Faultbox/fmv/internal/engine/shaders"
)

func programFor(p Pipeline) shader.Sources {
	if p == PipelineLit {
		return shaders.ModelLit
	}
	return shaders.ModelFlat
}

package reader

import (
	"fmt"

	"github.com/achilleasa/cpupath/asset"
	"github.com/achilleasa/cpupath/scene"
)

// Options that are not part of a scene description but affect its camera.
type Options struct {
	// Frame aspect ratio.
	Aspect float64

	// Vertical field of view override in degrees. Zero keeps the value
	// from the scene description.
	VFov float64
}

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource, Options) (*scene.Scene, error)
}

// Read scene from a local file or an http(s) URL.
func ReadScene(pathToScene string, opts Options) (*scene.Scene, error) {
	res, err := asset.NewResource(pathToScene)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	switch res.Ext() {
	case ".yaml", ".yml":
		reader = newYAMLReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", res.Ext())
	}
	return reader.Read(res, opts)
}

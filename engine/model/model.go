package model

import "slices"

// model is the implementation of the Model interface.
type model struct {
	name   string
	meshes []Mesh
}

// Model is an ordered collection of meshes. Insertion order is draw order.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes returns the meshes in draw order.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh
}

var _ Model = &model{}

// NewModel creates a Model from one or more meshes. It panics when no mesh is given,
// since an empty model cannot be rendered.
//
// Parameters:
//   - name: the model identifier
//   - meshes: the meshes in draw order
//
// Returns:
//   - Model: the new model
func NewModel(name string, meshes ...Mesh) Model {
	if len(meshes) == 0 {
		panic("model: NewModel requires at least one Mesh")
	}
	return &model{
		name:   name,
		meshes: slices.Clone(meshes),
	}
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return slices.Clone(m.meshes)
}

// Package formats provides parsers for the mesh file formats the viewer loads.
package formats

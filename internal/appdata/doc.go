// Package appdata binds Modbus source geometry to named parameters.
//
// A Hub decodes each poll result into typed parameter assignments, so
// parameters raise their publish and event flags only when the rendered
// value changes. Bindings also encode a parameter's value back into
// registers or bits for publishing.
package appdata

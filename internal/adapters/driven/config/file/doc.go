// Package file provides the TOML-backed configuration store.
// Settings live in ~/.graphmail/config.toml unless another directory is given.
package file

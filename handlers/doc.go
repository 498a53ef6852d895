// Package handlers provides ready-made event handlers for training
// engines: checkpointing, early stopping, progress bars, metric logging,
// NaN guards and validation passes. Each handler is a struct with an
// Attach method that registers it on an engine.
package handlers
